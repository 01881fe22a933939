package intelligence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/llm"
)

const readingSystemPrompt = `You assess a student's oral reading for a teacher.
Compare the transcript of the recording with the reference passage and score from 0 to 100:
overallScore, fluency, pronunciation, pace, accuracy. Estimate wordsPerMinute.
Give three items each for languageSpecificFeedback (sounds and script of the language),
generalFeedback, suggestions, strengths and areasForImprovement.
Respond with a single JSON object with exactly those keys. No text outside the JSON.`

// ReadingService scores a read-aloud attempt against the reference passage.
type ReadingService interface {
	// Analyze returns an assessment for the transcript. Model failures yield
	// the fallback assessment; only unknown languages are errors.
	Analyze(ctx context.Context, transcript, language string) (*domain.ReadingAssessment, error)
}

type readingService struct {
	client llm.LLMClient
	logger *slog.Logger
}

func NewReadingService(client llm.LLMClient, logger *slog.Logger) ReadingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &readingService{client: client, logger: logger}
}

// readingScores tolerates fractional scores from the model.
type readingScores struct {
	OverallScore             float64  `json:"overallScore"`
	Fluency                  float64  `json:"fluency"`
	Pronunciation            float64  `json:"pronunciation"`
	Pace                     float64  `json:"pace"`
	Accuracy                 float64  `json:"accuracy"`
	WordsPerMinute           float64  `json:"wordsPerMinute"`
	LanguageSpecificFeedback []string `json:"languageSpecificFeedback"`
	GeneralFeedback          []string `json:"generalFeedback"`
	Suggestions              []string `json:"suggestions"`
	Strengths                []string `json:"strengths"`
	AreasForImprovement      []string `json:"areasForImprovement"`
}

func validateScores(s readingScores) error {
	for name, v := range map[string]float64{
		"overallScore":  s.OverallScore,
		"fluency":       s.Fluency,
		"pronunciation": s.Pronunciation,
		"pace":          s.Pace,
		"accuracy":      s.Accuracy,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%s must be in [0,100], got %v", name, v)
		}
	}
	if s.WordsPerMinute < 0 {
		return errors.New("wordsPerMinute must not be negative")
	}
	return nil
}

func (s *readingService) Analyze(ctx context.Context, transcript, language string) (*domain.ReadingAssessment, error) {
	lang, err := domain.LookupLanguage(language)
	if err != nil {
		return nil, err
	}
	passage, err := domain.PassageFor(lang.Value)
	if err != nil {
		return nil, err
	}

	result, err := s.analyze(ctx, transcript, lang, passage)
	if err != nil {
		s.logger.WarnContext(ctx, "reading_assessment_fallback",
			"language", lang.Value,
			"error", err.Error(),
		)
		return FallbackAssessment(lang, passage), nil
	}
	return result, nil
}

func (s *readingService) analyze(ctx context.Context, transcript string, lang domain.Language, passage domain.ReadingPassage) (*domain.ReadingAssessment, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, errors.New("empty transcript")
	}
	if s.client == nil {
		return nil, llm.ErrDisabled
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskReading,
		SystemPrompt: readingSystemPrompt,
		UserPrompt: fmt.Sprintf("Language: %s\nExpected words per minute: %d\n\nReference passage:\n%s\n\nTranscript:\n%s",
			lang.Label, passage.ExpectedWPM, passage.Text, transcript),
		JSON: true,
	})
	if err != nil {
		return nil, err
	}
	scores, err := llm.ExtractJSON(resp.Text, validateScores)
	if err != nil {
		return nil, err
	}

	return &domain.ReadingAssessment{
		Language:                 lang.Value,
		OverallScore:             roundScore(scores.OverallScore),
		Fluency:                  roundScore(scores.Fluency),
		Pronunciation:            roundScore(scores.Pronunciation),
		Pace:                     roundScore(scores.Pace),
		Accuracy:                 roundScore(scores.Accuracy),
		WordsPerMinute:           roundScore(scores.WordsPerMinute),
		LanguageSpecificFeedback: scores.LanguageSpecificFeedback,
		GeneralFeedback:          scores.GeneralFeedback,
		Suggestions:              scores.Suggestions,
		Strengths:                scores.Strengths,
		AreasForImprovement:      scores.AreasForImprovement,
	}, nil
}

func roundScore(v float64) int {
	return int(math.Round(v))
}
