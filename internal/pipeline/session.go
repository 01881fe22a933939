package pipeline

import (
	"context"
	"sync"
)

// Session serialises runs for one user: starting a run cancels the one in
// flight, and progress from a superseded run is dropped.
type Session struct {
	orch *Orchestrator

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	latest *Run
}

func NewSession(orch *Orchestrator) *Session {
	return &Session{orch: orch}
}

// Start runs req, cancelling any earlier run still in progress. It blocks
// until the run finishes.
func (s *Session) Start(ctx context.Context, req Request, onProgress ProgressFunc) (*Run, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	id := s.seq
	s.cancel = cancel
	s.mu.Unlock()

	progress := func(p int) {
		if onProgress != nil && s.current(id) {
			onProgress(p)
		}
	}

	run, err := s.orch.Execute(runCtx, req, progress)

	s.mu.Lock()
	if s.seq == id {
		s.cancel = nil
		if run != nil {
			s.latest = run
		}
	}
	s.mu.Unlock()
	return run, err
}

// Cancel stops the in-flight run, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Latest is the most recent run that was not superseded.
func (s *Session) Latest() *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

func (s *Session) current(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq == id
}
