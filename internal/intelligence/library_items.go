package intelligence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/export"
)

// These helpers turn tool output into library items ready for
// service.LibraryService.Save. ID, CreatedAt and UserID are left for the
// library to fill.

func StoryItem(topic, language, story string) *domain.LibraryItem {
	return &domain.LibraryItem{
		Type:     domain.ItemStory,
		Title:    "Story: " + topic,
		Content:  story,
		Metadata: map[string]string{"topic": topic, "language": language},
	}
}

func VisualAidItem(aid *domain.VisualAid) *domain.LibraryItem {
	content := aid.ImagePrompt
	if content == "" {
		content = "Visual aid for " + aid.Topic
	}
	return &domain.LibraryItem{
		Type:    domain.ItemVisualAid,
		Title:   "Visual Aid: " + aid.Topic,
		Content: content,
		Metadata: map[string]string{
			"topic":      aid.Topic,
			"visualType": aid.Type.Value,
			"imageUrl":   aid.ImageURL,
		},
	}
}

// ReadingItem stores the assessment as indented JSON.
func ReadingItem(a *domain.ReadingAssessment) (*domain.LibraryItem, error) {
	body, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding assessment: %w", err)
	}
	label := a.Language
	if lang, err := domain.LookupLanguage(a.Language); err == nil {
		label = lang.Label
	}
	return &domain.LibraryItem{
		Type:    domain.ItemReadingAssessment,
		Title:   "Reading Assessment - " + label,
		Content: string(body),
		Metadata: map[string]string{
			"language":     a.Language,
			"overallScore": strconv.Itoa(a.OverallScore),
			"fallback":     strconv.FormatBool(a.Fallback),
		},
	}, nil
}

// ConversationItem stores a chat transcript in the download format.
func ConversationItem(messages []domain.ChatMessage, day time.Time) (*domain.LibraryItem, error) {
	var buf bytes.Buffer
	if err := export.WriteConversation(&buf, messages); err != nil {
		return nil, err
	}
	return &domain.LibraryItem{
		Type:     domain.ItemConversation,
		Title:    "Conversation " + day.Format("2006-01-02"),
		Content:  buf.String(),
		Metadata: map[string]string{"messages": strconv.Itoa(len(messages))},
	}, nil
}
