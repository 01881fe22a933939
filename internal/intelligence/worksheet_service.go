package intelligence

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/llm"
)

// WorksheetService produces one worksheet for one grade.
type WorksheetService interface {
	// Generate never fails: any collaborator error yields the deterministic
	// fallback worksheet for the grade.
	Generate(ctx context.Context, extractedText string, grade domain.Grade, subject string) domain.Worksheet
}

type worksheetService struct {
	client llm.LLMClient
	logger *slog.Logger
}

// NewWorksheetService creates a WorksheetService backed by an LLM client.
func NewWorksheetService(client llm.LLMClient, logger *slog.Logger) WorksheetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &worksheetService{client: client, logger: logger}
}

func (s *worksheetService) Generate(ctx context.Context, extractedText string, grade domain.Grade, subject string) domain.Worksheet {
	subject = normalizeSubject(subject)

	content, err := s.generate(ctx, extractedText, grade, subject)
	if err != nil {
		s.logger.WarnContext(ctx, "worksheet_fallback",
			"grade", int(grade),
			"subject", subject,
			"error", err.Error(),
		)
		return FallbackWorksheet(grade, subject)
	}

	return domain.Worksheet{
		Title:   domain.WorksheetTitle(grade, subject),
		Content: content,
		Grade:   grade,
		Subject: subject,
		Source:  domain.SourceGenerated,
	}
}

func (s *worksheetService) generate(ctx context.Context, extractedText string, grade domain.Grade, subject string) (string, error) {
	if s.client == nil {
		return "", llm.ErrDisabled
	}
	if !grade.Valid() {
		return "", fmt.Errorf("%w: %d", domain.ErrInvalidGrade, grade)
	}
	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskWorksheet,
		SystemPrompt: worksheetSystemPrompt,
		UserPrompt:   fmt.Sprintf(worksheetUserTemplate, subject, int(grade), extractedText),
	})
	if err != nil {
		return "", err
	}
	return llm.ExtractText(resp.Text)
}

func normalizeSubject(subject string) string {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return domain.DefaultSubject
	}
	return subject
}
