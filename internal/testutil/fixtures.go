package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/sahayak-edu/sahayak/internal/domain"
)

// Library item options
type ItemOption func(*domain.LibraryItem)

func WithID(id string) ItemOption {
	return func(i *domain.LibraryItem) {
		i.ID = id
	}
}

func WithItemType(t domain.ItemType) ItemOption {
	return func(i *domain.LibraryItem) {
		i.Type = t
	}
}

func WithContent(c string) ItemOption {
	return func(i *domain.LibraryItem) {
		i.Content = c
	}
}

func WithUser(userID string) ItemOption {
	return func(i *domain.LibraryItem) {
		i.UserID = userID
	}
}

func WithCreatedAt(t time.Time) ItemOption {
	return func(i *domain.LibraryItem) {
		i.CreatedAt = t
	}
}

func WithMetadata(k, v string) ItemOption {
	return func(i *domain.LibraryItem) {
		if i.Metadata == nil {
			i.Metadata = map[string]string{}
		}
		i.Metadata[k] = v
	}
}

// NewTestItem builds a story item owned by domain.DefaultUserID.
func NewTestItem(title string, opts ...ItemOption) *domain.LibraryItem {
	item := &domain.LibraryItem{
		ID:        uuid.New().String(),
		Type:      domain.ItemStory,
		Title:     title,
		Content:   "Once upon a time in " + title,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		UserID:    domain.DefaultUserID,
	}
	for _, o := range opts {
		o(item)
	}
	return item
}

// NewTestImage returns a tiny PNG-typed upload.
func NewTestImage() *domain.UploadedImage {
	return &domain.UploadedImage{
		Name:      "page.png",
		MediaType: "image/png",
		Data:      []byte("\x89PNG\r\n\x1a\nfake"),
	}
}
