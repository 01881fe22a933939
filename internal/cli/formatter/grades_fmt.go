package formatter

import (
	"fmt"
	"strings"

	"github.com/sahayak-edu/sahayak/internal/domain"
)

const bandWidth = len(domain.BandHigherSecondary)

// FormatGrades lists the selectable grades grouped by band.
func FormatGrades(grades []domain.GradeInfo) string {
	var b strings.Builder
	b.WriteString(Header("Grades"))
	b.WriteString("\n")

	for _, band := range domain.GradeBands {
		var values []string
		for _, g := range grades {
			if g.Band == band {
				values = append(values, g.Grade.String())
			}
		}
		if len(values) == 0 {
			continue
		}
		pad := strings.Repeat(" ", bandWidth-len(band))
		fmt.Fprintf(&b, "  %s%s  %s\n", BandStyle(band).Render(string(band)), pad, strings.Join(values, " "))
	}
	return b.String()
}

// FormatGradeSet renders a selection as "Grade 3, Grade 8".
func FormatGradeSet(set domain.GradeSet) string {
	sorted := set.Sorted()
	labels := make([]string, len(sorted))
	for i, g := range sorted {
		labels[i] = g.Label()
	}
	return strings.Join(labels, ", ")
}
