package intelligence

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/llm"
)

const visualAidSystemPrompt = `You write prompts for an image generator that produces classroom visual aids.
Given a topic and a visual type, describe one clear, labelled, uncluttered educational image
suitable for display on a blackboard or chart paper. Mention layout, labels and colours.
Return only the prompt text in one paragraph.`

// VisualAidService turns a topic into an image prompt and placeholder image.
type VisualAidService interface {
	Generate(ctx context.Context, topic, visualType string) (*domain.VisualAid, error)
}

type visualAidService struct {
	client llm.LLMClient
}

func NewVisualAidService(client llm.LLMClient) VisualAidService {
	return &visualAidService{client: client}
}

func (s *visualAidService) Generate(ctx context.Context, topic, visualType string) (*domain.VisualAid, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyPrompt
	}
	vt, err := domain.LookupVisualType(strings.ToLower(strings.TrimSpace(visualType)))
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskVisualAid,
		SystemPrompt: visualAidSystemPrompt,
		UserPrompt:   topic + " - " + vt.Value,
	})
	if err != nil {
		return nil, fmt.Errorf("generating image prompt: %w", err)
	}
	prompt, err := llm.ExtractText(resp.Text)
	if err != nil {
		return nil, fmt.Errorf("generating image prompt: %w", err)
	}

	return &domain.VisualAid{
		Topic:       topic,
		Type:        vt,
		ImagePrompt: prompt,
		ImageURL:    PlaceholderImageURL(topic, vt),
	}, nil
}

// PlaceholderImageURL builds the image URL shown until a real renderer is
// configured. The topic is cut to 50 characters before escaping.
func PlaceholderImageURL(topic string, vt domain.VisualType) string {
	runes := []rune(topic)
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return "/placeholder.svg?height=400&width=600&text=" + vt.Icon + "+" + encodeURIComponent(string(runes))
}

// encodeURIComponent escapes like the browser function of the same name:
// spaces become %20 and the unreserved marks !'()* stay literal.
func encodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	for _, r := range []string{"!", "'", "(", ")", "*"} {
		escaped = strings.ReplaceAll(escaped, url.QueryEscape(r), r)
	}
	return escaped
}
