package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func concurrentItem(i int, created time.Time) *domain.LibraryItem {
	return &domain.LibraryItem{
		ID:        fmt.Sprintf("ws-%02d", i),
		Type:      domain.ItemWorksheet,
		Title:     fmt.Sprintf("Worksheet %d", i),
		Content:   "1. Fill in the blank.",
		Metadata:  map[string]string{"grade": fmt.Sprint(i%12 + 1)},
		CreatedAt: created.Add(time.Duration(i) * time.Second),
		UserID:    domain.DefaultUserID,
	}
}

// TestConcurrentAccess_ReadDuringWrite checks that listing while a writer
// saves worksheets never returns half-written rows.
func TestConcurrentAccess_ReadDuringWrite(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteLibraryRepo(database)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			if err := repo.Create(ctx, concurrentItem(i, base)); err != nil {
				t.Errorf("writer: create item %d: %v", i, err)
				return
			}
		}
	}()

	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				items, err := repo.ListByUser(ctx, domain.DefaultUserID)
				if err != nil {
					t.Errorf("reader %d: list: %v", reader, err)
					return
				}
				for _, it := range items {
					if it.ID == "" || it.Title == "" || it.Metadata["grade"] == "" {
						t.Errorf("reader %d: got incomplete item %+v", reader, it)
					}
				}
			}
		}(r)
	}

	wg.Wait()

	items, err := repo.ListByUser(ctx, domain.DefaultUserID)
	require.NoError(t, err)
	assert.Len(t, items, 20)
	assert.Equal(t, "ws-19", items[0].ID, "newest first")
}

// TestConcurrentAccess_MemoryParallelWrites saves from many goroutines at once;
// run with -race.
func TestConcurrentAccess_MemoryParallelWrites(t *testing.T) {
	repo := NewMemoryLibraryRepo()
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.Create(ctx, concurrentItem(i, base)))
			_, err := repo.ListByUser(ctx, domain.DefaultUserID)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	items, err := repo.ListByUser(ctx, domain.DefaultUserID)
	require.NoError(t, err)
	assert.Len(t, items, 50)
}
