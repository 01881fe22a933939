package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sahayak-edu/sahayak/internal/db"
	"github.com/sahayak-edu/sahayak/internal/domain"
)

// PostgresLibraryRepo implements LibraryRepo on Postgres through the pgx
// database/sql driver. Metadata lives in a JSONB column.
type PostgresLibraryRepo struct {
	db db.DBTX
}

func NewPostgresLibraryRepo(conn db.DBTX) *PostgresLibraryRepo {
	return &PostgresLibraryRepo{db: conn}
}

func (r *PostgresLibraryRepo) Create(ctx context.Context, item *domain.LibraryItem) error {
	meta, err := encodeMetadata(item.Metadata)
	if err != nil {
		return err
	}
	query := `INSERT INTO library_items (` + libraryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)`
	_, err = r.db.ExecContext(ctx, query,
		item.ID,
		item.UserID,
		string(item.Type),
		item.Title,
		item.Content,
		meta,
		item.CreatedAt.UTC(),
	)
	if err != nil {
		return insertError(item.ID, err)
	}
	return nil
}

func (r *PostgresLibraryRepo) GetByID(ctx context.Context, id string) (*domain.LibraryItem, error) {
	query := `SELECT id, user_id, type, title, content, metadata::text, created_at
		FROM library_items WHERE id = $1`
	item, err := r.scanItem(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	return item, err
}

func (r *PostgresLibraryRepo) ListByUser(ctx context.Context, userID string) ([]*domain.LibraryItem, error) {
	query := `SELECT id, user_id, type, title, content, metadata::text, created_at
		FROM library_items WHERE user_id = $1 ORDER BY created_at DESC, id`
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

func (r *PostgresLibraryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM library_items WHERE id = $1`, id)
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

func (r *PostgresLibraryRepo) scanItem(row scanner) (*domain.LibraryItem, error) {
	var (
		item      domain.LibraryItem
		itemType  string
		meta      string
		createdAt time.Time
	)
	if err := row.Scan(&item.ID, &item.UserID, &itemType, &item.Title, &item.Content, &meta, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning library item: %w", err)
	}
	item.Type = domain.ItemType(itemType)
	item.CreatedAt = createdAt.UTC()

	var err error
	if item.Metadata, err = decodeMetadata(meta); err != nil {
		return nil, err
	}
	return &item, nil
}
