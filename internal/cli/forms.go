package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sahayak-edu/sahayak/internal/cli/formatter"
	"github.com/sahayak-edu/sahayak/internal/domain"
)

// sahayakHuhTheme returns a huh theme matching the formatter palette.
func sahayakHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.MultiSelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// gradeOptions lists every grade labelled with its band, e.g.
// "Grade 6 · Middle School".
func gradeOptions() []huh.Option[domain.Grade] {
	grades := domain.AllGrades()
	options := make([]huh.Option[domain.Grade], 0, len(grades))
	for _, g := range grades {
		options = append(options, huh.NewOption(fmt.Sprintf("%s · %s", g.Label, g.Band), g.Grade))
	}
	return options
}

func validateGradeSelection(selected []domain.Grade) error {
	if len(selected) == 0 {
		return errors.New("select at least one grade")
	}
	return nil
}

// worksheetForm collects the grades and subject for a worksheet run.
func worksheetForm(selected *[]domain.Grade, subject *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[domain.Grade]().
				Title("Grade Levels").
				Description("Worksheets are generated for each selected grade").
				Options(gradeOptions()...).
				Height(14).
				Value(selected).
				Validate(validateGradeSelection),
			huh.NewInput().
				Title("Subject").
				Placeholder(domain.DefaultSubject).
				Value(subject),
		),
	).WithTheme(sahayakHuhTheme()).WithShowHelp(false)
}

// askGradesAndSubject runs the worksheet form. The subject prefill is kept
// when the user leaves the field unchanged.
func askGradesAndSubject(subject string) (domain.GradeSet, string, error) {
	var selected []domain.Grade
	if err := worksheetForm(&selected, &subject).Run(); err != nil {
		return nil, "", err
	}
	return domain.NewGradeSet(selected...), strings.TrimSpace(subject), nil
}

// languageForm asks for a content language.
func languageForm(value *string) *huh.Form {
	langs := domain.Languages()
	options := make([]huh.Option[string], 0, len(langs))
	for _, l := range langs {
		options = append(options, huh.NewOption(l.Label, l.Value))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Language").
				Options(options...).
				Value(value),
		),
	).WithTheme(sahayakHuhTheme()).WithShowHelp(false)
}
