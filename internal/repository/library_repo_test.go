package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/sahayak-edu/sahayak/internal/db"
	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// libraryRepoContract runs the same behaviour checks against every backend.
func libraryRepoContract(t *testing.T, newRepo func(t *testing.T) LibraryRepo) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		repo := newRepo(t)
		item := testutil.NewTestItem("Water Cycle",
			testutil.WithItemType(domain.ItemWorksheet),
			testutil.WithMetadata("grade", "8"),
			testutil.WithMetadata("subject", "Science"),
		)
		require.NoError(t, repo.Create(ctx, item))

		got, err := repo.GetByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, item.ID, got.ID)
		assert.Equal(t, domain.ItemWorksheet, got.Type)
		assert.Equal(t, "Water Cycle", got.Title)
		assert.Equal(t, item.Content, got.Content)
		assert.Equal(t, map[string]string{"grade": "8", "subject": "Science"}, got.Metadata)
		assert.True(t, item.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("get missing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list newest first per user", func(t *testing.T) {
		repo := newRepo(t)
		base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		old := testutil.NewTestItem("old", testutil.WithCreatedAt(base.Add(-48*time.Hour)))
		mid := testutil.NewTestItem("mid", testutil.WithCreatedAt(base.Add(-24*time.Hour)))
		recent := testutil.NewTestItem("recent", testutil.WithCreatedAt(base))
		other := testutil.NewTestItem("other", testutil.WithUser("user2"), testutil.WithCreatedAt(base))
		for _, it := range []*domain.LibraryItem{mid, old, other, recent} {
			require.NoError(t, repo.Create(ctx, it))
		}

		items, err := repo.ListByUser(ctx, domain.DefaultUserID)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "recent", items[0].Title)
		assert.Equal(t, "mid", items[1].Title)
		assert.Equal(t, "old", items[2].Title)
	})

	t.Run("empty metadata round trips as empty map", func(t *testing.T) {
		repo := newRepo(t)
		item := testutil.NewTestItem("plain")
		require.NoError(t, repo.Create(ctx, item))

		got, err := repo.GetByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Metadata)
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		item := testutil.NewTestItem("gone")
		require.NoError(t, repo.Create(ctx, item))

		require.NoError(t, repo.Delete(ctx, item.ID))
		_, err := repo.GetByID(ctx, item.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		assert.ErrorIs(t, repo.Delete(ctx, item.ID), ErrNotFound)
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		repo := newRepo(t)
		item := testutil.NewTestItem("twice")
		require.NoError(t, repo.Create(ctx, item))
		assert.ErrorIs(t, repo.Create(ctx, item), ErrDuplicate)
	})
}

func TestSQLiteLibraryRepo(t *testing.T) {
	libraryRepoContract(t, func(t *testing.T) LibraryRepo {
		return NewSQLiteLibraryRepo(testutil.NewTestDB(t))
	})
}

func TestMemoryLibraryRepo(t *testing.T) {
	libraryRepoContract(t, func(t *testing.T) LibraryRepo {
		return NewMemoryLibraryRepo()
	})
}

// Set SAHAYAK_TEST_POSTGRES_DSN to run against a real server.
func TestPostgresLibraryRepo(t *testing.T) {
	dsn := os.Getenv("SAHAYAK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SAHAYAK_TEST_POSTGRES_DSN not set")
	}
	libraryRepoContract(t, func(t *testing.T) LibraryRepo {
		conn, err := db.OpenPostgres(context.Background(), dsn)
		require.NoError(t, err)
		_, err = conn.Exec(`TRUNCATE library_items`)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return NewPostgresLibraryRepo(conn)
	})
}

func TestMemoryLibraryRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryLibraryRepo()
	item := testutil.NewTestItem("copy", testutil.WithMetadata("k", "v"))
	require.NoError(t, repo.Create(ctx, item))

	item.Metadata["k"] = "changed"
	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "v", got.Metadata["k"])

	got.Title = "mutated"
	again, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "copy", again.Title)
}

func TestSQLiteLibraryRepo_TxScoped(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)

	item := testutil.NewTestItem("in tx")
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return SQLiteLibraryRepos(tx).Create(ctx, item)
	})
	require.NoError(t, err)

	got, err := NewSQLiteLibraryRepo(database).GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "in tx", got.Title)
}

func TestSQLiteLibraryRepo_CorruptMetadata(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewTestDB(t)
	_, err := database.Exec(`INSERT INTO library_items (id, user_id, type, title, metadata, created_at)
		VALUES ('bad', 'user1', 'story', 't', 'not json', ?)`, db.FormatTime(time.Now()))
	require.NoError(t, err)

	_, err = NewSQLiteLibraryRepo(database).GetByID(ctx, "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, sql.ErrNoRows)
}

func TestMemoryUnitOfWork_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryLibraryRepo()
	gone := testutil.NewTestItem("gone")
	require.NoError(t, mem.Create(ctx, gone))
	added := testutil.NewTestItem("added")

	err := MemoryUnitOfWork{}.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := mem.Repos()(tx)
		require.NoError(t, repo.Create(ctx, added))
		require.NoError(t, repo.Delete(ctx, gone.ID))

		// Staged writes are visible inside the transaction only.
		listed, err := repo.ListByUser(ctx, domain.DefaultUserID)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, "added", listed[0].Title)
		_, err = mem.GetByID(ctx, added.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	})
	require.NoError(t, err)

	_, err = mem.GetByID(ctx, added.ID)
	require.NoError(t, err)
	_, err = mem.GetByID(ctx, gone.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUnitOfWork_DiscardsOnError(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryLibraryRepo()
	existing := testutil.NewTestItem("existing")
	require.NoError(t, mem.Create(ctx, existing))

	err := MemoryUnitOfWork{}.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := mem.Repos()(tx)
		if err := repo.Create(ctx, testutil.NewTestItem("fresh")); err != nil {
			return err
		}
		if err := repo.Delete(ctx, existing.ID); err != nil {
			return err
		}
		return repo.Create(ctx, testutil.NewTestItem("again", testutil.WithID(existing.ID)))
	})
	require.NoError(t, err, "a deleted id may be reused in the same transaction")

	err = MemoryUnitOfWork{}.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := mem.Repos()(tx)
		if err := repo.Create(ctx, testutil.NewTestItem("late")); err != nil {
			return err
		}
		return repo.Create(ctx, testutil.NewTestItem("clash", testutil.WithID(existing.ID)))
	})
	require.ErrorIs(t, err, ErrDuplicate)

	items, err := mem.ListByUser(ctx, domain.DefaultUserID)
	require.NoError(t, err)
	titles := make([]string, 0, len(items))
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	assert.ElementsMatch(t, []string{"fresh", "again"}, titles)
}

func TestMemoryUnitOfWork_CommitRechecksConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryLibraryRepo()
	item := testutil.NewTestItem("raced")

	err := MemoryUnitOfWork{}.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := mem.Repos()(tx).Create(ctx, item); err != nil {
			return err
		}
		// Another writer stores the same id before this transaction commits.
		return mem.Create(ctx, cloneItem(item))
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}
