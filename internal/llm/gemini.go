package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient implements LLMClient on the Gemini API. It is the only
// backend that reliably reads photographed textbook pages.
type GeminiClient struct {
	cfg    LLMConfig
	client *genai.Client
	retry  retrier
}

// NewGeminiClient dials the Gemini API. The caller owns Close.
func NewGeminiClient(ctx context.Context, cfg LLMConfig, observer Observer) (*GeminiClient, error) {
	cfg.Provider = ProviderGemini
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, fmt.Errorf("gemini: %w (set GEMINI_API_KEY)", ErrMissingAPIKey)
	}
	opts := []option.ClientOption{option.WithAPIKey(key)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}
	return &GeminiClient{cfg: cfg, client: cl, retry: newRetrier(cfg, observer)}, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func (c *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	temp, maxTok := c.cfg.sampling(req)

	m := c.client.GenerativeModel(c.cfg.ModelName())
	m.SetTemperature(float32(temp))
	if maxTok > 0 {
		m.SetMaxOutputTokens(int32(maxTok))
	}
	if req.JSON {
		m.ResponseMIMEType = "application/json"
	}
	if req.SystemPrompt != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemPrompt)}}
	}

	parts := geminiParts(req)

	return c.retry.do(ctx, req.Task, func(ctx context.Context) (string, string, error) {
		var (
			resp *genai.GenerateContentResponse
			err  error
		)
		if len(req.History) > 0 {
			cs := m.StartChat()
			cs.History = geminiHistory(req.History)
			resp, err = cs.SendMessage(ctx, parts...)
		} else {
			resp, err = m.GenerateContent(ctx, parts...)
		}
		if err != nil {
			return "", "", err
		}
		return firstText(resp), c.cfg.ModelName(), nil
	})
}

// Available reports whether a key is configured; the API has no cheap
// health endpoint.
func (c *GeminiClient) Available(context.Context) bool {
	return c.cfg.APIKey != ""
}

func geminiParts(req GenerateRequest) []genai.Part {
	parts := make([]genai.Part, 0, 1+len(req.Images))
	parts = append(parts, genai.Text(req.UserPrompt))
	for _, img := range req.Images {
		parts = append(parts, &genai.Blob{MIMEType: img.MIMEType, Data: img.Data})
	}
	return parts
}

func geminiHistory(history []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	return out
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}
