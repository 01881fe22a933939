package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements LLMClient with chat completions. Image parts are
// not supported.
type OpenAIClient struct {
	cfg    LLMConfig
	client openai.Client
	retry  retrier
}

func NewOpenAIClient(cfg LLMConfig, observer Observer) (*OpenAIClient, error) {
	cfg.Provider = ProviderOpenAI
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai: %w (set OPENAI_API_KEY)", ErrMissingAPIKey)
	}
	// Retries are handled by the shared retrier.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIClient{
		cfg:    cfg,
		client: openai.NewClient(opts...),
		retry:  newRetrier(cfg, observer),
	}, nil
}

func (c *OpenAIClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if len(req.Images) > 0 {
		return nil, fmt.Errorf("openai: image input: %w", ErrUnsupported)
	}
	temp, maxTok := c.cfg.sampling(req)

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.cfg.ModelName()),
		Messages:    openAIMessages(req),
		Temperature: openai.Float(temp),
	}
	if maxTok > 0 {
		params.MaxCompletionTokens = openai.Int(int64(maxTok))
	}

	return c.retry.do(ctx, req.Task, func(ctx context.Context) (string, string, error) {
		resp, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", "", err
		}
		if len(resp.Choices) == 0 {
			return "", resp.Model, ErrEmptyResponse
		}
		return resp.Choices[0].Message.Content, resp.Model, nil
	})
}

func (c *OpenAIClient) Available(context.Context) bool {
	return c.cfg.APIKey != ""
}

func openAIMessages(req GenerateRequest) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(req.SystemPrompt))
	}
	for _, h := range req.History {
		switch h.Role {
		case RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(h.Content))
		default:
			msgs = append(msgs, openai.UserMessage(h.Content))
		}
	}
	msgs = append(msgs, openai.UserMessage(req.UserPrompt))
	return msgs
}
