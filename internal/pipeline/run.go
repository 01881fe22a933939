package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/sahayak-edu/sahayak/internal/domain"
)

// RunState is the lifecycle of one pipeline run.
type RunState string

const (
	StateIdle       RunState = "idle"
	StateExtracting RunState = "extracting"
	StateGenerating RunState = "generating"
	StateSucceeded  RunState = "succeeded"
	StateFailed     RunState = "failed"
	StateCancelled  RunState = "cancelled"
)

var runTransitions = map[RunState][]RunState{
	StateIdle:       {StateExtracting, StateCancelled},
	StateExtracting: {StateGenerating, StateFailed, StateCancelled},
	StateGenerating: {StateSucceeded, StateCancelled},
}

func (s RunState) CanTransitionTo(next RunState) bool {
	for _, allowed := range runTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s RunState) Terminal() bool {
	return len(runTransitions[s]) == 0
}

// Run is one execution of the pipeline. It is safe to read from other
// goroutines while the orchestrator drives it.
type Run struct {
	ID        string
	Grades    domain.GradeSet
	Subject   string
	ImageName string
	StartedAt time.Time

	mu         sync.RWMutex
	state      RunState
	progress   int
	extracted  string
	results    map[domain.Grade]domain.Worksheet
	err        error
	finishedAt time.Time
}

func newRun(id string, grades domain.GradeSet, subject, imageName string, now time.Time) *Run {
	return &Run{
		ID:        id,
		Grades:    grades,
		Subject:   subject,
		ImageName: imageName,
		StartedAt: now,
		state:     StateIdle,
	}
}

func (r *Run) State() RunState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *Run) Progress() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.progress
}

func (r *Run) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

func (r *Run) FinishedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.finishedAt
}

// ExtractedText is empty until extraction completes.
func (r *Run) ExtractedText() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.extracted
}

// Results returns a copy of the grade to worksheet mapping. It is nil unless
// the run succeeded.
func (r *Run) Results() map[domain.Grade]domain.Worksheet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.results == nil {
		return nil
	}
	out := make(map[domain.Grade]domain.Worksheet, len(r.results))
	for g, ws := range r.results {
		out[g] = ws
	}
	return out
}

// Worksheet returns the result for one grade.
func (r *Run) Worksheet(g domain.Grade) (domain.Worksheet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ws, ok := r.results[g]
	return ws, ok
}

// Worksheets returns the results in grade order.
func (r *Run) Worksheets() []domain.Worksheet {
	results := r.Results()
	out := make([]domain.Worksheet, 0, len(results))
	for _, g := range r.Grades.Sorted() {
		if ws, ok := results[g]; ok {
			out = append(out, ws)
		}
	}
	return out
}

// FallbackCount is the number of grades served by the fallback template.
func (r *Run) FallbackCount() int {
	n := 0
	for _, ws := range r.Results() {
		if ws.IsFallback() {
			n++
		}
	}
	return n
}

func (r *Run) transition(next RunState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.state.CanTransitionTo(next) {
		return fmt.Errorf("%w: run %s -> %s", domain.ErrInvalidTransition, r.state, next)
	}
	r.state = next
	return nil
}

// advance raises progress and reports whether it changed. Progress never
// decreases.
func (r *Run) advance(p int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p <= r.progress {
		return false
	}
	r.progress = p
	return true
}

func (r *Run) setExtracted(text string) {
	r.mu.Lock()
	r.extracted = text
	r.mu.Unlock()
}

// finish moves to a terminal state and publishes results in one step so
// readers never observe Succeeded without results.
func (r *Run) finish(state RunState, results map[domain.Grade]domain.Worksheet, err error, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.CanTransitionTo(state) {
		r.state = state
	}
	r.results = results
	r.err = err
	r.finishedAt = now
}
