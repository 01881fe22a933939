package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/pipeline"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// BandStyle returns the style used for a grade band.
func BandStyle(band domain.GradeBand) lipgloss.Style {
	switch band {
	case domain.BandPrimary:
		return StyleGreen
	case domain.BandMiddleSchool:
		return StyleBlue
	case domain.BandSecondary:
		return StyleYellow
	case domain.BandHigherSecondary:
		return StylePurple
	default:
		return StyleDim
	}
}

// SourceBadge marks whether a worksheet came from the model or the template.
func SourceBadge(src domain.WorksheetSource) string {
	if src == domain.SourceFallback {
		return StyleYellow.Render("○ template")
	}
	return StyleGreen.Render("● generated")
}

// ItemTypeBadge returns a colored label such as "Visual Aid".
func ItemTypeBadge(t domain.ItemType) string {
	label := ItemTypeLabel(t)
	switch t {
	case domain.ItemStory:
		return StylePurple.Render(label)
	case domain.ItemWorksheet:
		return StyleBlue.Render(label)
	case domain.ItemVisualAid:
		return StyleGreen.Render(label)
	case domain.ItemReadingAssessment:
		return StyleYellow.Render(label)
	default:
		return StyleFg.Render(label)
	}
}

// ItemTypeLabel turns "visual-aid" into "Visual Aid".
func ItemTypeLabel(t domain.ItemType) string {
	words := strings.Split(string(t), "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// RunStateIndicator returns a colored indicator such as "● SUCCEEDED".
func RunStateIndicator(state pipeline.RunState) string {
	label := "● " + strings.ToUpper(string(state))
	switch state {
	case pipeline.StateSucceeded:
		return StyleGreen.Render(label)
	case pipeline.StateFailed:
		return StyleRed.Render(label)
	case pipeline.StateCancelled:
		return StyleYellow.Render(label)
	default:
		return StyleBlue.Render(label)
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
