package intelligence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/llm"
)

const assistantSystemPrompt = `You are SAHAYAK, an AI teaching companion for teachers in Indian schools.
Help with lesson plans, worksheets, explanations of difficult topics, classroom activities,
curriculum questions and pedagogy. Keep answers practical for low-resource, multigrade classrooms.
Use short paragraphs and bullet points where they help.`

// Greeting is the assistant's opening message in a fresh conversation.
const Greeting = `Hello! I'm SAHAYAK, your AI Teaching Companion. I'm here to help you with:

• Creating lesson plans and educational content
• Generating worksheets and assignments
• Explaining complex topics in simple terms
• Suggesting teaching activities and methods
• Answering questions about curriculum and pedagogy
• Providing educational resources and ideas

How can I assist you with your teaching today?`

// ResetGreeting replaces the conversation after it is cleared.
const ResetGreeting = "Hello! I'm SAHAYAK, your AI Teaching Companion. How can I assist you with your teaching today?"

var QuickPrompts = []string{
	"Create a lesson plan for teaching fractions to Grade 4 students",
	"Explain photosynthesis in simple terms for primary school children",
	"Generate questions for a science quiz on the solar system",
	"Help me create a story about friendship for moral education",
	"Suggest activities for teaching English grammar to Grade 6",
	"Create a worksheet on Indian history for Grade 8 students",
	"Explain the water cycle with examples from Indian geography",
	"Help me plan a mathematics activity for teaching multiplication",
}

// AssistantService answers free-form teaching questions in a conversation.
type AssistantService interface {
	// Ask answers question given the prior turns. On failure it returns an
	// apology message carrying the error text along with the error.
	Ask(ctx context.Context, history []domain.ChatMessage, question string) (domain.ChatMessage, error)
}

type assistantService struct {
	client llm.LLMClient
	now    func() time.Time
}

func NewAssistantService(client llm.LLMClient) AssistantService {
	return &assistantService{client: client, now: time.Now}
}

// NewGreeting starts a conversation.
func NewGreeting(now time.Time) domain.ChatMessage {
	return domain.ChatMessage{ID: uuid.NewString(), Role: domain.RoleAssistant, Content: Greeting, Timestamp: now}
}

func (s *assistantService) Ask(ctx context.Context, history []domain.ChatMessage, question string) (domain.ChatMessage, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.ChatMessage{}, fmt.Errorf("%w: type your question or request", ErrEmptyPrompt)
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskAssistant,
		SystemPrompt: assistantSystemPrompt,
		UserPrompt:   question,
		History:      toLLMHistory(history),
	})
	var text string
	if err == nil {
		text, err = llm.ExtractText(resp.Text)
	}
	if err != nil {
		return s.message(apology(err)), fmt.Errorf("assistant: %w", err)
	}
	return s.message(text), nil
}

func (s *assistantService) message(content string) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        uuid.NewString(),
		Role:      domain.RoleAssistant,
		Content:   content,
		Timestamp: s.now(),
	}
}

func apology(err error) string {
	return "I apologize, but I encountered an error while processing your request. " +
		"Please try again or rephrase your question.\n\nError: " + err.Error()
}

// toLLMHistory drops the canned greeting, which carries no context.
func toLLMHistory(history []domain.ChatMessage) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		if m.Role == domain.RoleAssistant && (m.Content == Greeting || m.Content == ResetGreeting) {
			continue
		}
		role := llm.RoleUser
		if m.Role == domain.RoleAssistant {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: m.Content})
	}
	return out
}
