package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// attemptFunc performs one backend call and returns text and model name.
type attemptFunc func(ctx context.Context) (text, model string, err error)

// retrier runs attempts under a per-attempt timeout and reports one
// observer event per Generate call. Every backend shares it so errors
// classify the same way regardless of provider.
type retrier struct {
	cfg      LLMConfig
	observer Observer
}

func newRetrier(cfg LLMConfig, observer Observer) retrier {
	return retrier{cfg: cfg, observer: observerOrNoop(observer)}
}

func (r retrier) do(ctx context.Context, task TaskType, fn attemptFunc) (*GenerateResponse, error) {
	start := time.Now()
	timeout := time.Duration(r.cfg.TaskTimeout(task)) * time.Millisecond
	attempts := 1 + r.cfg.MaxRetries

	var lastErr error
	made := 0
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			break
		}
		made++

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		text, model, err := fn(attemptCtx)
		attemptTimedOut := errors.Is(attemptCtx.Err(), context.DeadlineExceeded)
		cancel()

		if err == nil && strings.TrimSpace(text) == "" {
			err = ErrEmptyResponse
		}
		if err == nil {
			latency := time.Since(start).Milliseconds()
			if model == "" {
				model = r.cfg.ModelName()
			}
			r.emit(task, latency, made, nil)
			return &GenerateResponse{Text: text, Model: model, LatencyMs: latency}, nil
		}

		if attemptTimedOut && ctx.Err() == nil {
			err = fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		lastErr = err

		if isPermanent(err) {
			break
		}
	}

	final := classify(ctx, task, lastErr)
	r.emit(task, time.Since(start).Milliseconds(), made, final)
	return nil, final
}

func (r retrier) emit(task TaskType, latency int64, attempts int, err error) {
	r.observer.OnCallComplete(LLMCallEvent{
		Task:      task,
		Provider:  r.cfg.Provider,
		Model:     r.cfg.ModelName(),
		LatencyMs: latency,
		Attempts:  attempts,
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
}

func classify(ctx context.Context, task TaskType, lastErr error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	case ctx.Err() != nil:
		return fmt.Errorf("llm %s: %w", task, ctx.Err())
	case lastErr == nil:
		return ErrRetryExhausted
	case errors.Is(lastErr, ErrTimeout):
		return ErrTimeout
	case isConnectionError(lastErr):
		return fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
	case isPermanent(lastErr):
		return lastErr
	default:
		return fmt.Errorf("%w: %w", ErrRetryExhausted, lastErr)
	}
}

func isPermanent(err error) bool {
	return errors.Is(err, ErrUnsupported) || errors.Is(err, ErrMissingAPIKey)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "CANCELLED"
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrEmptyResponse):
		return "EMPTY"
	case errors.Is(err, ErrUnsupported):
		return "UNSUPPORTED"
	case errors.Is(err, ErrMissingAPIKey):
		return "NO_API_KEY"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	default:
		return "UNKNOWN"
	}
}
