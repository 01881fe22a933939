package domain

import "fmt"

type WorksheetSource string

const (
	SourceGenerated WorksheetSource = "generated"
	SourceFallback  WorksheetSource = "fallback"
)

// DefaultSubject is used when no subject is supplied for a worksheet run.
const DefaultSubject = "Mathematics"

// Worksheet is one generated worksheet for a single grade.
type Worksheet struct {
	Title   string
	Content string
	Grade   Grade
	Subject string
	Source  WorksheetSource
}

// WorksheetTitle returns the canonical title "Grade 8 Worksheet - Mathematics".
func WorksheetTitle(grade Grade, subject string) string {
	return fmt.Sprintf("Grade %d Worksheet - %s", int(grade), subject)
}

func (w Worksheet) IsFallback() bool {
	return w.Source == SourceFallback
}
