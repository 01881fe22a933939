package formatter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sahayak-edu/sahayak/internal/domain"
)

// FormatLibraryList renders saved items newest first, as returned by the
// library service.
func FormatLibraryList(items []*domain.LibraryItem, now time.Time) string {
	if len(items) == 0 {
		return Dim("No saved items yet. Generate a worksheet, story or visual aid and save it.") + "\n"
	}

	table := NewTable("ID", "TYPE", "TITLE", "SAVED").MaxWidth(2, 48)
	for _, it := range items {
		table.Row(TruncID(it.ID), ItemTypeBadge(it.Type), it.Title, RelativeDateFrom(it.CreatedAt, now))
	}

	var b strings.Builder
	b.WriteString(table.String())
	fmt.Fprintf(&b, "\n%s\n", Dim(fmt.Sprintf("%d item(s)", len(items))))
	return b.String()
}

// FormatLibraryItem shows one item with its metadata and full content.
func FormatLibraryItem(it *domain.LibraryItem, now time.Time) string {
	var b strings.Builder
	b.WriteString(Header(it.Title))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s  %s\n", Dim("ID:   "), it.ID)
	fmt.Fprintf(&b, "  %s  %s\n", Dim("Type: "), ItemTypeBadge(it.Type))
	fmt.Fprintf(&b, "  %s  %s (%s)\n", Dim("Saved:"), HumanDate(it.CreatedAt, now), it.CreatedAt.Format("2006-01-02 15:04"))

	keys := make([]string, 0, len(it.Metadata))
	for k := range it.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s  %s\n", Dim(k+":"), it.Metadata[k])
	}

	if content := strings.TrimSpace(it.Content); content != "" {
		b.WriteString("\n")
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String()
}

// dashboardCards are the counters shown on the dashboard, in order.
var dashboardCards = []struct {
	label string
	typ   domain.ItemType
}{
	{"Stories Created", domain.ItemStory},
	{"Worksheets Generated", domain.ItemWorksheet},
	{"Visual Aids", domain.ItemVisualAid},
	{"Reading Assessments", domain.ItemReadingAssessment},
}

// FormatDashboard renders per-type counters with this week's additions
// followed by the most recent items.
func FormatDashboard(stats domain.LibraryStats, recent []*domain.LibraryItem, now time.Time) string {
	var b strings.Builder
	b.WriteString(Header("Dashboard"))
	b.WriteString("\n")

	for _, card := range dashboardCards {
		week := stats.ThisWeek[card.typ]
		change := Dim("no change this week")
		if week > 0 {
			change = StyleGreen.Render(fmt.Sprintf("+%d this week", week))
		}
		fmt.Fprintf(&b, "  %-22s %4d  %s\n", card.label, stats.ByType[card.typ], change)
	}
	fmt.Fprintf(&b, "  %-22s %4d\n", "Total", stats.Total)

	if len(recent) > 0 {
		b.WriteString("\n")
		b.WriteString(Header("Recent Activity"))
		b.WriteString("\n")
		for _, it := range recent {
			fmt.Fprintf(&b, "  %s  %s  %s\n", ItemTypeBadge(it.Type), it.Title, Dim(RelativeDateFrom(it.CreatedAt, now)))
		}
	}
	return b.String()
}
