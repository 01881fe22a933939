package service

import (
	"errors"
	"time"

	"github.com/sahayak-edu/sahayak/internal/domain"
)

// ErrRunNotComplete is returned when saving a run that has no results.
var ErrRunNotComplete = errors.New("worksheet run has not completed")

// ErrGradeNotInRun is returned when saving a grade the run did not produce.
var ErrGradeNotInRun = errors.New("grade not in worksheet run")

// ErrInvalidArchive is returned when a library archive fails validation.
var ErrInvalidArchive = errors.New("import validation failed")

const statsWindow = 7 * 24 * time.Hour

// aggregateStats counts items per type, plus those created within the last
// week of now.
func aggregateStats(items []*domain.LibraryItem, now time.Time) domain.LibraryStats {
	stats := domain.LibraryStats{
		ByType:   make(map[domain.ItemType]int, len(domain.ItemTypes)),
		ThisWeek: make(map[domain.ItemType]int, len(domain.ItemTypes)),
	}
	for _, t := range domain.ItemTypes {
		stats.ByType[t] = 0
		stats.ThisWeek[t] = 0
	}
	cutoff := now.Add(-statsWindow)
	for _, item := range items {
		stats.Total++
		stats.ByType[item.Type]++
		if item.CreatedAt.After(cutoff) {
			stats.ThisWeek[item.Type]++
		}
	}
	return stats
}

// sampleLibraryItems is the content a fresh library starts with.
func sampleLibraryItems(userID string, now time.Time) []*domain.LibraryItem {
	day := 24 * time.Hour
	return []*domain.LibraryItem{
		{
			Type:      domain.ItemStory,
			Title:     "Water Cycle Story in Hindi",
			Content:   "एक छोटे से गांव में...",
			Metadata:  map[string]string{"language": "hindi", "topic": "water cycle"},
			CreatedAt: now.Add(-2 * day),
			UserID:    userID,
		},
		{
			Type:      domain.ItemWorksheet,
			Title:     "Grade 4 Mathematics Worksheet",
			Content:   "Name: _______ Date: _______\n\nMATHEMATICS WORKSHEET...",
			Metadata:  map[string]string{"grade": "4", "subject": "mathematics"},
			CreatedAt: now.Add(-day),
			UserID:    userID,
		},
		{
			Type:      domain.ItemVisualAid,
			Title:     "Solar System Diagram",
			Content:   "Educational diagram showing planets...",
			Metadata:  map[string]string{"topic": "solar system", "visualType": "diagram"},
			CreatedAt: now.Add(-3 * day),
			UserID:    userID,
		},
	}
}
