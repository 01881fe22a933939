package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sahayak-edu/sahayak/internal/domain"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// encodeMetadata serializes item metadata for the metadata column. A nil map
// is stored as an empty object.
func encodeMetadata(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding metadata: %w", err)
	}
	return string(b), nil
}

func decodeMetadata(raw string) (map[string]string, error) {
	out := map[string]string{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	return out, nil
}

// cloneItem returns a deep copy so callers cannot mutate stored state.
func cloneItem(item *domain.LibraryItem) *domain.LibraryItem {
	cp := *item
	if item.Metadata != nil {
		cp.Metadata = make(map[string]string, len(item.Metadata))
		for k, v := range item.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

func notFound(id string) error {
	return fmt.Errorf("library item %s: %w", id, ErrNotFound)
}

func duplicate(id string) error {
	return fmt.Errorf("library item %s: %w", id, ErrDuplicate)
}

// insertError wraps a failed INSERT, mapping key violations from either
// driver to ErrDuplicate.
func insertError(id string, err error) error {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return duplicate(id)
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return duplicate(id)
	}
	return fmt.Errorf("inserting library item: %w", err)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
