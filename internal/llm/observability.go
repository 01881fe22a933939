package llm

import (
	"context"
	"log/slog"
)

// LLMCallEvent describes one Generate call after retries are exhausted or
// it succeeds.
type LLMCallEvent struct {
	Task      TaskType
	Provider  Provider
	Model     string
	LatencyMs int64
	Attempts  int
	Success   bool
	ErrorCode string
}

type Observer interface {
	OnCallComplete(event LLMCallEvent)
}

// ObserverFunc lets a plain function act as an Observer.
type ObserverFunc func(LLMCallEvent)

func (f ObserverFunc) OnCallComplete(e LLMCallEvent) { f(e) }

type NoopObserver struct{}

func (NoopObserver) OnCallComplete(LLMCallEvent) {}

// NewLogObserver logs each call as an llm_call record tagged
// component=llm. Failures log at WARN with their error code.
func NewLogObserver(logger *slog.Logger) Observer {
	if logger == nil {
		return NoopObserver{}
	}
	log := logger.With(slog.String("component", "llm"))
	return ObserverFunc(func(e LLMCallEvent) {
		level, status := slog.LevelInfo, "ok"
		if !e.Success {
			level, status = slog.LevelWarn, "err:"+e.ErrorCode
		}
		log.LogAttrs(context.Background(), level, "llm_call",
			slog.String("task", string(e.Task)),
			slog.String("provider", string(e.Provider)),
			slog.String("model", e.Model),
			slog.Int64("latency_ms", e.LatencyMs),
			slog.Int("attempts", e.Attempts),
			slog.String("status", status),
		)
	})
}

func observerOrNoop(o Observer) Observer {
	if o == nil {
		return NoopObserver{}
	}
	return o
}
