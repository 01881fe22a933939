package testutil

import (
	"context"
	"sync"

	"github.com/sahayak-edu/sahayak/internal/llm"
)

// FakeLLM is a scripted llm.LLMClient. Respond decides each answer; calls
// are recorded for assertions. Safe for concurrent use.
type FakeLLM struct {
	Respond func(ctx context.Context, req llm.GenerateRequest) (string, error)
	Up      bool

	mu    sync.Mutex
	calls []llm.GenerateRequest
}

// NewFakeLLM answers every request with text.
func NewFakeLLM(text string) *FakeLLM {
	return &FakeLLM{
		Up: true,
		Respond: func(context.Context, llm.GenerateRequest) (string, error) {
			return text, nil
		},
	}
}

// NewFailingLLM fails every request with err.
func NewFailingLLM(err error) *FakeLLM {
	return &FakeLLM{
		Respond: func(context.Context, llm.GenerateRequest) (string, error) {
			return "", err
		},
	}
}

func (f *FakeLLM) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	text, err := f.Respond(ctx, req)
	if err != nil {
		return nil, err
	}
	return &llm.GenerateResponse{Text: text, Model: "fake"}, nil
}

func (f *FakeLLM) Available(context.Context) bool { return f.Up }

// Calls returns a copy of the recorded requests.
func (f *FakeLLM) Calls() []llm.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]llm.GenerateRequest, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *FakeLLM) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
