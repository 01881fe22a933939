package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/testutil"
)

var fmtNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestFormatLibraryList(t *testing.T) {
	items := []*domain.LibraryItem{
		testutil.NewTestItem("Grade 4 Mathematics Worksheet",
			testutil.WithItemType(domain.ItemWorksheet),
			testutil.WithCreatedAt(fmtNow.Add(-24*time.Hour))),
		testutil.NewTestItem("Water Cycle Story in Hindi",
			testutil.WithCreatedAt(fmtNow.Add(-48*time.Hour))),
	}
	items[0].ID = "abcdef1234567890"

	out := stripANSI(FormatLibraryList(items, fmtNow))
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "abcdef12")
	assert.NotContains(t, out, "abcdef1234")
	assert.Contains(t, out, "Worksheet")
	assert.Contains(t, out, "Yesterday")
	assert.Contains(t, out, "2d ago")
	assert.Contains(t, out, "2 item(s)")
	assert.Less(t, strings.Index(out, "Grade 4"), strings.Index(out, "Water Cycle"), "keeps the given order")
}

func TestFormatLibraryList_Empty(t *testing.T) {
	assert.Contains(t, stripANSI(FormatLibraryList(nil, fmtNow)), "No saved items yet")
}

func TestFormatLibraryItem(t *testing.T) {
	item := testutil.NewTestItem("Visual Aid: Solar System",
		testutil.WithItemType(domain.ItemVisualAid),
		testutil.WithContent("A labelled diagram of the planets"),
		testutil.WithMetadata("visualType", "diagram"),
		testutil.WithMetadata("topic", "Solar System"),
		testutil.WithCreatedAt(fmtNow.Add(-time.Hour)))

	out := stripANSI(FormatLibraryItem(item, fmtNow))
	assert.Contains(t, out, "VISUAL AID: SOLAR SYSTEM")
	assert.Contains(t, out, "Visual Aid")
	assert.Contains(t, out, "Today")
	assert.Contains(t, out, "A labelled diagram of the planets")
	assert.Less(t, strings.Index(out, "topic:"), strings.Index(out, "visualType:"), "metadata keys are sorted")
}

func TestFormatDashboard(t *testing.T) {
	stats := domain.LibraryStats{
		Total:    5,
		ByType:   map[domain.ItemType]int{domain.ItemStory: 3, domain.ItemWorksheet: 2},
		ThisWeek: map[domain.ItemType]int{domain.ItemStory: 2},
	}
	recent := []*domain.LibraryItem{testutil.NewTestItem("Story: Monsoon", testutil.WithCreatedAt(fmtNow))}

	out := stripANSI(FormatDashboard(stats, recent, fmtNow))
	assert.Contains(t, out, "Stories Created")
	assert.Contains(t, out, "+2 this week")
	assert.Contains(t, out, "no change this week")
	assert.Contains(t, out, "RECENT ACTIVITY")
	assert.Contains(t, out, "Story: Monsoon")
}
