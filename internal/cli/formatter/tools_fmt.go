package formatter

import (
	"fmt"
	"strings"

	"github.com/sahayak-edu/sahayak/internal/domain"
)

// FormatStory prints a generated story under its topic.
func FormatStory(topic, language, story string) string {
	var b strings.Builder
	b.WriteString(Header("Story: " + topic))
	b.WriteString("\n")
	if language != "" {
		fmt.Fprintf(&b, "%s\n\n", Dim("Language: "+language))
	}
	b.WriteString(strings.TrimSpace(story))
	b.WriteString("\n")
	return b.String()
}

// FormatChatMessage renders one conversation turn.
func FormatChatMessage(m domain.ChatMessage) string {
	speaker := StylePurple.Render("SAHAYAK")
	if m.Role == domain.RoleUser {
		speaker = StyleBlue.Render("You")
	}
	stamp := ""
	if !m.Timestamp.IsZero() {
		stamp = " " + Dim(m.Timestamp.Format("15:04"))
	}
	return fmt.Sprintf("%s%s\n%s\n", speaker, stamp, strings.TrimSpace(m.Content))
}

// FormatChat renders a whole conversation with a blank line between turns.
func FormatChat(messages []domain.ChatMessage) string {
	parts := make([]string, len(messages))
	for i, m := range messages {
		parts[i] = FormatChatMessage(m)
	}
	return strings.Join(parts, "\n")
}

// FormatVisualAid shows the image prompt and where the rendered image lives.
func FormatVisualAid(aid *domain.VisualAid) string {
	var b strings.Builder
	b.WriteString(Header("Visual Aid: " + aid.Topic))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s  %s %s\n", Dim("Type: "), aid.Type.Icon, aid.Type.Label)
	fmt.Fprintf(&b, "  %s  %s\n", Dim("Image:"), aid.ImageURL)
	if aid.ImagePrompt != "" {
		fmt.Fprintf(&b, "\n%s\n%s\n", Bold("Image prompt"), strings.TrimSpace(aid.ImagePrompt))
	}
	return b.String()
}

// FormatPassage shows the text a student should read aloud.
func FormatPassage(lang domain.Language, p domain.ReadingPassage) string {
	var b strings.Builder
	b.WriteString(Header("Reading Passage"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s\n", Bold(p.Title), Dim(lang.Label))
	fmt.Fprintf(&b, "%s\n\n", Dim(fmt.Sprintf("Difficulty: %s · Expected pace: %d words/min", p.Difficulty, p.ExpectedWPM)))
	b.WriteString(strings.TrimSpace(p.Text))
	b.WriteString("\n")
	return b.String()
}

// FormatReadingAssessment renders the scores as bars followed by the
// feedback lists. Empty lists are omitted.
func FormatReadingAssessment(a *domain.ReadingAssessment) string {
	var b strings.Builder
	b.WriteString(Header("Reading Assessment"))
	b.WriteString("\n")
	if a.Fallback {
		fmt.Fprintf(&b, "%s\n\n", StyleYellow.Render("Live analysis was unavailable; showing a sample assessment."))
	}

	scores := []struct {
		label string
		value int
	}{
		{"Overall", a.OverallScore},
		{"Fluency", a.Fluency},
		{"Pronunciation", a.Pronunciation},
		{"Pace", a.Pace},
		{"Accuracy", a.Accuracy},
	}
	for _, s := range scores {
		fmt.Fprintf(&b, "  %-14s %s\n", s.label, RenderProgress(s.value, 20))
	}
	fmt.Fprintf(&b, "  %-14s %d\n", "Words/min", a.WordsPerMinute)

	sections := []struct {
		title string
		items []string
	}{
		{"Strengths", a.Strengths},
		{"Areas for Improvement", a.AreasForImprovement},
		{"Language Feedback", a.LanguageSpecificFeedback},
		{"General Feedback", a.GeneralFeedback},
		{"Suggestions", a.Suggestions},
	}
	for _, sec := range sections {
		if len(sec.items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s\n", Bold(sec.title))
		for _, item := range sec.items {
			fmt.Fprintf(&b, "  • %s\n", item)
		}
	}
	return b.String()
}
