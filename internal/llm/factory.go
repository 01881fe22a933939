package llm

import (
	"context"
	"fmt"
	"io"
)

// NewClient builds the client selected by cfg.Provider. A disabled config
// yields a client that always fails with ErrDisabled. The returned closer
// must be called on shutdown.
func NewClient(ctx context.Context, cfg LLMConfig, observer Observer) (LLMClient, io.Closer, error) {
	if !cfg.Enabled {
		return NewDisabledClient(), nopCloser{}, nil
	}
	switch cfg.Provider {
	case ProviderOllama, "":
		return NewOllamaClient(cfg, observer), nopCloser{}, nil
	case ProviderGemini:
		c, err := NewGeminiClient(ctx, cfg, observer)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	case ProviderOpenAI:
		c, err := NewOpenAIClient(cfg, observer)
		if err != nil {
			return nil, nil, err
		}
		return c, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
