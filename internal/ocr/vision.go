package ocr

import (
	"context"
	"fmt"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/llm"
)

const visionSystemPrompt = `You transcribe photographed textbook pages for teachers in Indian schools.
Copy every heading, paragraph, example and exercise exactly as printed, in reading order.
Keep numbers, operators and units unchanged. Do not solve, summarise or translate.
Mark unreadable words as [unclear]. Output plain text only.`

// VisionExtractor reads the page with a multimodal model.
type VisionExtractor struct {
	client llm.LLMClient
}

func NewVisionExtractor(client llm.LLMClient) *VisionExtractor {
	return &VisionExtractor{client: client}
}

func (v *VisionExtractor) Extract(ctx context.Context, img domain.UploadedImage) (string, error) {
	if len(img.Data) == 0 {
		return "", ErrEmptyImage
	}
	resp, err := v.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskOCR,
		SystemPrompt: visionSystemPrompt,
		UserPrompt:   "Transcribe the text on this textbook page.",
		Images:       []llm.Image{{MIMEType: img.MediaType, Data: img.Data}},
	})
	if err != nil {
		return "", fmt.Errorf("vision ocr: %w", err)
	}
	text, err := llm.ExtractText(resp.Text)
	if err != nil {
		return "", ErrNoText
	}
	return text, nil
}
