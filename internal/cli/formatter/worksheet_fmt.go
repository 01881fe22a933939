package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/pipeline"
)

// StageLabel names the pipeline step a progress value belongs to.
func StageLabel(percent int) string {
	switch {
	case percent <= 0:
		return "Starting"
	case percent <= pipeline.ProgressReceived:
		return "Processing image"
	case percent <= pipeline.ProgressExtracted:
		return "Extracting text"
	case percent <= pipeline.ProgressAnalyzed:
		return "Analyzing content"
	case percent < pipeline.ProgressDone:
		return "Generating worksheets"
	default:
		return "Done"
	}
}

// FormatProgressLine renders one progress update for non-interactive output.
func FormatProgressLine(percent int) string {
	return fmt.Sprintf("%s %s", RenderProgress(percent, 20), Dim(StageLabel(percent)))
}

// FormatRun summarises a finished run and lists its worksheets.
func FormatRun(run *pipeline.Run) string {
	var b strings.Builder
	b.WriteString(Header("Worksheet Run"))
	b.WriteString("\n")

	fmt.Fprintf(&b, "  %s  %s\n", Dim("Run:     "), run.ID)
	fmt.Fprintf(&b, "  %s  %s\n", Dim("State:   "), RunStateIndicator(run.State()))
	fmt.Fprintf(&b, "  %s  %s\n", Dim("Image:   "), run.ImageName)
	fmt.Fprintf(&b, "  %s  %s\n", Dim("Subject: "), run.Subject)
	fmt.Fprintf(&b, "  %s  %s\n", Dim("Grades:  "), FormatGradeSet(run.Grades))
	if !run.FinishedAt().IsZero() {
		elapsed := run.FinishedAt().Sub(run.StartedAt).Round(100 * time.Millisecond)
		fmt.Fprintf(&b, "  %s  %s\n", Dim("Took:    "), elapsed)
	}
	if err := run.Err(); err != nil {
		fmt.Fprintf(&b, "\n  %s\n", StyleRed.Render(err.Error()))
		return b.String()
	}

	worksheets := run.Worksheets()
	if len(worksheets) == 0 {
		return b.String()
	}

	b.WriteString("\n")
	rows := make([][]string, 0, len(worksheets))
	for _, ws := range worksheets {
		rows = append(rows, []string{
			BandStyle(ws.Grade.Band()).Render(ws.Grade.Label()),
			ws.Title,
			SourceBadge(ws.Source),
		})
	}
	b.WriteString(RenderTable([]string{"GRADE", "TITLE", "SOURCE"}, rows))

	if n := run.FallbackCount(); n > 0 {
		fmt.Fprintf(&b, "\n%s\n", StyleYellow.Render(
			fmt.Sprintf("%d of %d worksheets use the offline template; the model could not produce them.", n, len(worksheets))))
	}
	return b.String()
}

// FormatWorksheet shows one worksheet in full.
func FormatWorksheet(ws domain.Worksheet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", Bold(ws.Title), SourceBadge(ws.Source))
	fmt.Fprintf(&b, "%s\n\n", Dim("Customized for "+ws.Grade.Label()+" students"))
	b.WriteString(strings.TrimRight(ws.Content, "\n"))
	b.WriteString("\n")
	return b.String()
}
