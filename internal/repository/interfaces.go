package repository

import (
	"context"
	"errors"

	"github.com/sahayak-edu/sahayak/internal/db"
	"github.com/sahayak-edu/sahayak/internal/domain"
)

// ErrNotFound is returned when a lookup or delete targets a missing row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when Create hits an id that is already stored.
var ErrDuplicate = errors.New("already exists")

// LibraryRepo stores saved teaching content. ListByUser returns newest first.
type LibraryRepo interface {
	Create(ctx context.Context, item *domain.LibraryItem) error
	GetByID(ctx context.Context, id string) (*domain.LibraryItem, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.LibraryItem, error)
	Delete(ctx context.Context, id string) error
}

// LibraryRepoFactory builds a repo bound to a connection or transaction, so
// services can create tx-scoped repos inside db.UnitOfWork callbacks.
type LibraryRepoFactory func(conn db.DBTX) LibraryRepo

// SQLiteLibraryRepos is the factory for the SQLite store.
func SQLiteLibraryRepos(conn db.DBTX) LibraryRepo { return NewSQLiteLibraryRepo(conn) }

// PostgresLibraryRepos is the factory for the Postgres store.
func PostgresLibraryRepos(conn db.DBTX) LibraryRepo { return NewPostgresLibraryRepo(conn) }
