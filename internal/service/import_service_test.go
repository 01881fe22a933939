package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/importer"
	"github.com/sahayak-edu/sahayak/internal/repository"
	"github.com/sahayak-edu/sahayak/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleArchive() *importer.Archive {
	return &importer.Archive{
		Version: importer.ArchiveVersion,
		Items: []importer.ItemImport{
			{ID: "imp-1", Type: "story", Title: "The Clever Crow", Content: "A thirsty crow..."},
			{ID: "imp-2", Type: "worksheet", Title: "Grade 3 Science", Content: "1. Name a plant."},
			{ID: "imp-3", Type: "story", Title: "Monsoon Day", Content: "Rain came."},
		},
	}
}

func TestImportService_ImportArchive(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteLibraryRepo(database)
	var logs bytes.Buffer
	svc := NewImportService(repo, repository.SQLiteLibraryRepos, testutil.NewTestUoW(database), NewLogUseCaseObserver(&logs))
	ctx := context.Background()

	result, err := svc.ImportArchive(ctx, sampleArchive(), "teacher7")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 2, result.ByType[domain.ItemStory])
	assert.Equal(t, 1, result.ByType[domain.ItemWorksheet])

	items, err := repo.ListByUser(ctx, "teacher7")
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Contains(t, logs.String(), "use_case=import-library")
}

func TestImportService_ValidationErrorsListed(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewImportService(repository.NewSQLiteLibraryRepo(database), repository.SQLiteLibraryRepos, testutil.NewTestUoW(database))

	a := sampleArchive()
	a.Items[0].Type = "podcast"
	a.Items[2].Title = ""
	_, err := svc.ImportArchive(context.Background(), a, "")
	require.ErrorIs(t, err, ErrInvalidArchive)
	assert.Contains(t, err.Error(), "import validation failed (2 errors)")
	assert.Contains(t, err.Error(), "items[0].type")
	assert.Contains(t, err.Error(), "items[2].title is required")
}

func TestImportService_RollsBackOnFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteLibraryRepo(database)
	injected := errors.New("disk full")
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Match: "INSERT INTO library_items", Err: injected}
	svc := NewImportService(repo, repository.SQLiteLibraryRepos, uow)
	ctx := context.Background()

	_, err := svc.ImportArchive(ctx, sampleArchive(), "")
	require.ErrorIs(t, err, injected)
	assert.Equal(t, 2, uow.Execs(), "import stops at the failing insert")

	items, err := repo.ListByUser(ctx, domain.DefaultUserID)
	require.NoError(t, err)
	assert.Empty(t, items, "first insert must be rolled back")
}

func TestImportService_DuplicateOfExistingItemFails(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteLibraryRepo(database)
	svc := NewImportService(repo, repository.SQLiteLibraryRepos, testutil.NewTestUoW(database))
	ctx := context.Background()

	_, err := svc.ImportArchive(ctx, sampleArchive(), "")
	require.NoError(t, err)
	_, err = svc.ImportArchive(ctx, sampleArchive(), "")
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	items, err := repo.ListByUser(ctx, domain.DefaultUserID)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestImportService_MemoryStoreRollsBackOnExistingID(t *testing.T) {
	ctx := context.Background()
	mem := repository.NewMemoryLibraryRepo()
	require.NoError(t, mem.Create(ctx, testutil.NewTestItem("Existing", testutil.WithID("dup"))))
	svc := NewImportService(mem, mem.Repos(), repository.MemoryUnitOfWork{})

	_, err := svc.ImportArchive(ctx, &importer.Archive{
		Version: importer.ArchiveVersion,
		Items: []importer.ItemImport{
			{ID: "fresh", Type: "story", Title: "Fresh"},
			{ID: "dup", Type: "story", Title: "Dup"},
		},
	}, "")
	require.ErrorIs(t, err, repository.ErrDuplicate)

	items, err := mem.ListByUser(ctx, domain.DefaultUserID)
	require.NoError(t, err)
	require.Len(t, items, 1, "fresh must not survive the failed import")
	assert.Equal(t, "Existing", items[0].Title)
}

func TestImportService_ExportThenImportFile(t *testing.T) {
	ctx := context.Background()
	srcDB := testutil.NewTestDB(t)
	src := NewImportService(repository.NewSQLiteLibraryRepo(srcDB), repository.SQLiteLibraryRepos, testutil.NewTestUoW(srcDB))
	_, err := src.ImportArchive(ctx, sampleArchive(), "")
	require.NoError(t, err)

	archive, err := src.ExportLibrary(ctx, "")
	require.NoError(t, err)
	require.Len(t, archive.Items, 3)

	path := filepath.Join(t.TempDir(), "library.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, importer.WriteArchive(f, archive))
	require.NoError(t, f.Close())

	mem := repository.NewMemoryLibraryRepo()
	dst := NewImportService(mem, mem.Repos(), repository.MemoryUnitOfWork{})
	result, err := dst.ImportLibrary(ctx, path, "teacher9")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
}
