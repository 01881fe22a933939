package intelligence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/llm"
)

// ErrEmptyPrompt indicates a topic, question or prompt was blank.
var ErrEmptyPrompt = errors.New("please enter a topic")

const storySystemPrompt = `You are SAHAYAK, a storyteller for primary and middle school classrooms in rural India.
Write an engaging, culturally familiar story that teaches the concept the teacher asks about.
Use simple sentences, named characters, and a clear moral or takeaway at the end.
Write the whole story in the requested language and script. Plain text only.`

// ExampleStoryPrompts are starter topics offered to teachers.
var ExampleStoryPrompts = []string{
	"Create a story about farmers to explain different types of soil",
	"Explain the water cycle through a story about a village",
	"Create a story about local festivals to teach about seasons",
	"Tell a story about local animals to explain food chains",
}

// StoryService writes a teaching story in a regional language.
type StoryService interface {
	Generate(ctx context.Context, topic, language string) (string, error)
}

type storyService struct {
	client llm.LLMClient
}

func NewStoryService(client llm.LLMClient) StoryService {
	return &storyService{client: client}
}

func (s *storyService) Generate(ctx context.Context, topic, language string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", ErrEmptyPrompt
	}
	lang, err := domain.LookupLanguage(language)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskStory,
		SystemPrompt: storySystemPrompt,
		UserPrompt:   fmt.Sprintf("Language: %s\n\nTopic: %s", lang.NativeName, topic),
	})
	if err != nil {
		return "", fmt.Errorf("generating story: %w", err)
	}
	return llm.ExtractText(resp.Text)
}
