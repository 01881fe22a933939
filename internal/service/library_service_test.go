package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/repository"
	"github.com/sahayak-edu/sahayak/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteLibrary(t *testing.T) (LibraryService, *bytes.Buffer) {
	t.Helper()
	database := testutil.NewTestDB(t)
	var logs bytes.Buffer
	svc := NewLibraryService(
		repository.NewSQLiteLibraryRepo(database),
		repository.SQLiteLibraryRepos,
		testutil.NewTestUoW(database),
		NewLogUseCaseObserver(&logs),
	)
	return svc, &logs
}

func TestLibraryService_SaveFillsDefaults(t *testing.T) {
	svc, logs := newSQLiteLibrary(t)
	ctx := context.Background()

	item := &domain.LibraryItem{Type: domain.ItemStory, Title: "Monsoon", Content: "Rain came."}
	id, err := svc.Save(ctx, item)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, item.ID)
	assert.Equal(t, domain.DefaultUserID, item.UserID)
	assert.False(t, item.CreatedAt.IsZero())

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Monsoon", got.Title)
	assert.Contains(t, logs.String(), "use_case=save-library-item")
}

func TestLibraryService_SaveRejectsInvalid(t *testing.T) {
	svc, logs := newSQLiteLibrary(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, &domain.LibraryItem{Type: "podcast", Title: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidItemType)

	_, err = svc.Save(ctx, &domain.LibraryItem{Type: domain.ItemStory, Title: "  "})
	assert.ErrorIs(t, err, domain.ErrMissingTitle)
	assert.Contains(t, logs.String(), "success=false")
}

func TestLibraryService_ListNewestFirst(t *testing.T) {
	svc, _ := newSQLiteLibrary(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i, title := range []string{"a", "b", "c"} {
		_, err := svc.Save(ctx, testutil.NewTestItem(title, testutil.WithCreatedAt(now.Add(time.Duration(i)*time.Minute))))
		require.NoError(t, err)
	}

	items, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{items[0].Title, items[1].Title, items[2].Title})
}

func TestLibraryService_Search(t *testing.T) {
	svc, _ := newSQLiteLibrary(t)
	ctx := context.Background()

	fixtures := []*domain.LibraryItem{
		testutil.NewTestItem("Water Cycle Story", testutil.WithContent("clouds and rain")),
		testutil.NewTestItem("Fractions", testutil.WithItemType(domain.ItemWorksheet), testutil.WithContent("1/2 + 1/4 water")),
		testutil.NewTestItem("Solar System", testutil.WithItemType(domain.ItemVisualAid), testutil.WithContent("planets")),
		testutil.NewTestItem("Other user water", testutil.WithUser("user2")),
	}
	for _, it := range fixtures {
		_, err := svc.Save(ctx, it)
		require.NoError(t, err)
	}

	tests := []struct {
		name     string
		query    string
		itemType string
		want     []string
	}{
		{"title match ignores case", "WATER", "all", []string{"Water Cycle Story", "Fractions"}},
		{"content match", "planets", "", []string{"Solar System"}},
		{"type filter", "water", "worksheet", []string{"Fractions"}},
		{"type only", "", "visual-aid", []string{"Solar System"}},
		{"no match", "volcano", "all", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := svc.Search(ctx, domain.DefaultUserID, tt.query, tt.itemType)
			require.NoError(t, err)
			titles := make([]string, 0, len(items))
			for _, it := range items {
				titles = append(titles, it.Title)
			}
			assert.ElementsMatch(t, tt.want, titles)
		})
	}

	_, err := svc.Search(ctx, domain.DefaultUserID, "", "podcast")
	assert.ErrorIs(t, err, domain.ErrInvalidItemType)
}

func TestLibraryService_DeleteMissing(t *testing.T) {
	svc, _ := newSQLiteLibrary(t)
	err := svc.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLibraryService_SeedIfEmpty(t *testing.T) {
	svc, _ := newSQLiteLibrary(t)
	ctx := context.Background()

	n, err := svc.SeedIfEmpty(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	items, err := svc.List(ctx, domain.DefaultUserID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	// Seeds are dated 1, 2 and 3 days back.
	assert.Equal(t, "Grade 4 Mathematics Worksheet", items[0].Title)
	assert.Equal(t, "Water Cycle Story in Hindi", items[1].Title)
	assert.Equal(t, "Solar System Diagram", items[2].Title)
	assert.Equal(t, "4", items[0].Metadata["grade"])

	n, err = svc.SeedIfEmpty(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n, "second seed is a no-op")
}

func TestLibraryService_SeedRollsBack(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: errors.New("disk full")}
	svc := NewLibraryService(repository.NewSQLiteLibraryRepo(database), repository.SQLiteLibraryRepos, uow)
	ctx := context.Background()

	_, err := svc.SeedIfEmpty(ctx, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	items, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, items, "first insert must be rolled back")
}

func TestLibraryService_Stats(t *testing.T) {
	mem := repository.NewMemoryLibraryRepo()
	svc := NewLibraryService(mem, mem.Repos(), repository.MemoryUnitOfWork{})
	ctx := context.Background()
	now := time.Now().UTC()

	seed := []*domain.LibraryItem{
		testutil.NewTestItem("s1", testutil.WithCreatedAt(now.Add(-time.Hour))),
		testutil.NewTestItem("s2", testutil.WithCreatedAt(now.AddDate(0, 0, -10))),
		testutil.NewTestItem("w1", testutil.WithItemType(domain.ItemWorksheet), testutil.WithCreatedAt(now.AddDate(0, 0, -2))),
	}
	for _, it := range seed {
		_, err := svc.Save(ctx, it)
		require.NoError(t, err)
	}

	stats, err := svc.Stats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByType[domain.ItemStory])
	assert.Equal(t, 1, stats.ByType[domain.ItemWorksheet])
	assert.Equal(t, 0, stats.ByType[domain.ItemVisualAid])
	assert.Equal(t, 1, stats.ThisWeek[domain.ItemStory])
	assert.Equal(t, 1, stats.ThisWeek[domain.ItemWorksheet])
}
