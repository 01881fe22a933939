package service

import (
	"testing"
	"time"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAggregateStats_WeekWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	items := []*domain.LibraryItem{
		{Type: domain.ItemStory, CreatedAt: now.Add(-time.Hour)},
		{Type: domain.ItemStory, CreatedAt: now.Add(-statsWindow)},
		{Type: domain.ItemWorksheet, CreatedAt: now.AddDate(0, -1, 0)},
		{Type: domain.ItemConversation, CreatedAt: now.Add(-6 * 24 * time.Hour)},
	}

	stats := aggregateStats(items, now)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.ByType[domain.ItemStory])
	assert.Equal(t, 1, stats.ThisWeek[domain.ItemStory], "an item exactly a week old is outside the window")
	assert.Equal(t, 0, stats.ThisWeek[domain.ItemWorksheet])
	assert.Equal(t, 1, stats.ThisWeek[domain.ItemConversation])
}

func TestAggregateStats_EmptyHasEveryType(t *testing.T) {
	stats := aggregateStats(nil, time.Now())
	assert.Zero(t, stats.Total)
	for _, typ := range domain.ItemTypes {
		v, ok := stats.ByType[typ]
		assert.True(t, ok, typ)
		assert.Zero(t, v)
	}
}

func TestSampleLibraryItems(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	items := sampleLibraryItems("teacher7", now)
	assert.Len(t, items, 3)
	for _, item := range items {
		assert.Equal(t, "teacher7", item.UserID)
		assert.True(t, item.CreatedAt.Before(now))
		assert.NotEmpty(t, item.Title)
	}
}
