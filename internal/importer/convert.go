package importer

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sahayak-edu/sahayak/internal/domain"
)

// Convert turns a validated archive into library items owned by userID.
// Call ValidateArchive first; Convert assumes the archive is valid.
func Convert(a *Archive, userID string, now time.Time) ([]*domain.LibraryItem, error) {
	items := make([]*domain.LibraryItem, 0, len(a.Items))
	for i, in := range a.Items {
		itemType, err := domain.ParseItemType(in.Type)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}

		createdAt := now.UTC()
		if in.CreatedAt != nil {
			t, err := time.Parse(time.RFC3339, *in.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("items[%d]: parsing created_at: %w", i, err)
			}
			createdAt = t.UTC()
		}

		id := in.ID
		if id == "" {
			id = uuid.NewString()
		}

		metadata := make(map[string]string, len(in.Metadata))
		for k, v := range in.Metadata {
			metadata[k] = v
		}

		items = append(items, &domain.LibraryItem{
			ID:        id,
			Type:      itemType,
			Title:     in.Title,
			Content:   in.Content,
			Metadata:  metadata,
			CreatedAt: createdAt,
			UserID:    userID,
		})
	}
	return items, nil
}

// FromItems builds an archive of items. Ownership is not exported.
func FromItems(items []*domain.LibraryItem, now time.Time) *Archive {
	a := &Archive{
		Version:    ArchiveVersion,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Items:      make([]ItemImport, 0, len(items)),
	}
	for _, it := range items {
		created := it.CreatedAt.UTC().Format(time.RFC3339Nano)
		a.Items = append(a.Items, ItemImport{
			ID:        it.ID,
			Type:      string(it.Type),
			Title:     it.Title,
			Content:   it.Content,
			Metadata:  it.Metadata,
			CreatedAt: &created,
		})
	}
	return a
}
