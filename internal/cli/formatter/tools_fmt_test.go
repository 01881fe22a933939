package formatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/intelligence"
)

func TestFormatChat(t *testing.T) {
	at := time.Date(2026, 3, 10, 14, 5, 0, 0, time.UTC)
	out := stripANSI(FormatChat([]domain.ChatMessage{
		{Role: domain.RoleAssistant, Content: "Hello!", Timestamp: at},
		{Role: domain.RoleUser, Content: "Explain fractions", Timestamp: at},
	}))
	assert.Equal(t, "SAHAYAK 14:05\nHello!\n\nYou 14:05\nExplain fractions\n", out)
}

func TestFormatVisualAid(t *testing.T) {
	vt, err := domain.LookupVisualType("diagram")
	require.NoError(t, err)
	aid := &domain.VisualAid{Topic: "Water Cycle", Type: vt, ImagePrompt: "Arrows from sea to cloud", ImageURL: "https://example.test/img.png"}

	out := stripANSI(FormatVisualAid(aid))
	assert.Contains(t, out, "VISUAL AID: WATER CYCLE")
	assert.Contains(t, out, "Educational Diagram")
	assert.Contains(t, out, "https://example.test/img.png")
	assert.Contains(t, out, "Arrows from sea to cloud")
}

func TestFormatReadingAssessment(t *testing.T) {
	lang, err := domain.LookupLanguage("english")
	require.NoError(t, err)
	passage, err := domain.PassageFor("english")
	require.NoError(t, err)
	a := intelligence.FallbackAssessment(lang, passage)

	out := stripANSI(FormatReadingAssessment(a))
	assert.Contains(t, out, "READING ASSESSMENT")
	assert.Contains(t, out, "sample assessment")
	assert.Contains(t, out, "Pronunciation")
	assert.Contains(t, out, "Words/min")
	assert.Contains(t, out, "Strengths")
}

func TestFormatReadingAssessment_OmitsEmptySections(t *testing.T) {
	out := stripANSI(FormatReadingAssessment(&domain.ReadingAssessment{OverallScore: 80, Strengths: []string{"Clear voice"}}))
	assert.Contains(t, out, "Clear voice")
	assert.NotContains(t, out, "Suggestions")
	assert.NotContains(t, out, "sample assessment")
}

func TestFormatStoryAndPassage(t *testing.T) {
	out := stripANSI(FormatStory("Monsoon", "hindi", "  Once upon a time\n"))
	assert.Contains(t, out, "STORY: MONSOON")
	assert.Contains(t, out, "Language: hindi")
	assert.Contains(t, out, "Once upon a time\n")

	lang, err := domain.LookupLanguage("hindi")
	require.NoError(t, err)
	p, err := domain.PassageFor("hindi")
	require.NoError(t, err)
	out = stripANSI(FormatPassage(lang, p))
	assert.Contains(t, out, p.Title)
	assert.Contains(t, out, "80 words/min")
}
