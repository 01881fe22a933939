package service

import (
	"sync"

	"github.com/sahayak-edu/sahayak/internal/pipeline"
)

// DefaultRunRegistrySize bounds how many finished runs are kept for download.
const DefaultRunRegistrySize = 32

// runRegistry keeps the most recent runs, evicting the oldest first.
type runRegistry struct {
	mu    sync.Mutex
	max   int
	order []string
	runs  map[string]*pipeline.Run
}

func newRunRegistry(max int) *runRegistry {
	if max <= 0 {
		max = DefaultRunRegistrySize
	}
	return &runRegistry{max: max, runs: make(map[string]*pipeline.Run, max)}
}

func (r *runRegistry) put(run *pipeline.Run) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.runs[run.ID]; ok {
		return
	}
	for len(r.order) >= r.max {
		delete(r.runs, r.order[0])
		r.order = r.order[1:]
	}
	r.runs[run.ID] = run
	r.order = append(r.order, run.ID)
}

func (r *runRegistry) get(id string) (*pipeline.Run, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	return run, ok
}
