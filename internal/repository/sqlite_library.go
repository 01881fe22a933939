package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sahayak-edu/sahayak/internal/db"
	"github.com/sahayak-edu/sahayak/internal/domain"
)

// SQLiteLibraryRepo implements LibraryRepo using a SQLite database.
type SQLiteLibraryRepo struct {
	db db.DBTX
}

// NewSQLiteLibraryRepo creates a new SQLiteLibraryRepo.
func NewSQLiteLibraryRepo(conn db.DBTX) *SQLiteLibraryRepo {
	return &SQLiteLibraryRepo{db: conn}
}

const libraryColumns = `id, user_id, type, title, content, metadata, created_at`

func (r *SQLiteLibraryRepo) Create(ctx context.Context, item *domain.LibraryItem) error {
	meta, err := encodeMetadata(item.Metadata)
	if err != nil {
		return err
	}
	query := `INSERT INTO library_items (` + libraryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		item.ID,
		item.UserID,
		string(item.Type),
		item.Title,
		item.Content,
		meta,
		db.FormatTime(item.CreatedAt),
	)
	if err != nil {
		return insertError(item.ID, err)
	}
	return nil
}

func (r *SQLiteLibraryRepo) GetByID(ctx context.Context, id string) (*domain.LibraryItem, error) {
	query := `SELECT ` + libraryColumns + ` FROM library_items WHERE id = ?`
	item, err := r.scanItem(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	return item, err
}

func (r *SQLiteLibraryRepo) ListByUser(ctx context.Context, userID string) ([]*domain.LibraryItem, error) {
	query := `SELECT ` + libraryColumns + ` FROM library_items
		WHERE user_id = ? ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing library items: %w", err)
	}
	defer rows.Close()

	var items []*domain.LibraryItem
	for rows.Next() {
		item, err := r.scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating library items: %w", err)
	}
	return items, nil
}

func (r *SQLiteLibraryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM library_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting library item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting library item: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func (r *SQLiteLibraryRepo) scanItem(row scanner) (*domain.LibraryItem, error) {
	var (
		item      domain.LibraryItem
		itemType  string
		meta      string
		createdAt string
	)
	if err := row.Scan(&item.ID, &item.UserID, &itemType, &item.Title, &item.Content, &meta, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning library item: %w", err)
	}
	item.Type = domain.ItemType(itemType)

	var err error
	if item.Metadata, err = decodeMetadata(meta); err != nil {
		return nil, err
	}
	if item.CreatedAt, err = db.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	return &item, nil
}
