package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidItemType = errors.New("invalid library item type")
	ErrMissingTitle    = errors.New("library item title is required")
)

type ItemType string

const (
	ItemStory             ItemType = "story"
	ItemWorksheet         ItemType = "worksheet"
	ItemVisualAid         ItemType = "visual-aid"
	ItemReadingAssessment ItemType = "reading-assessment"
	ItemConversation      ItemType = "conversation"
)

// ItemTypes lists the library item types in display order.
var ItemTypes = []ItemType{ItemStory, ItemWorksheet, ItemVisualAid, ItemReadingAssessment, ItemConversation}

// ValidItemTypes is the canonical set of accepted library item types.
var ValidItemTypes = map[ItemType]bool{
	ItemStory: true, ItemWorksheet: true, ItemVisualAid: true,
	ItemReadingAssessment: true, ItemConversation: true,
}

// ItemTypeAll is the search filter value that matches every type.
const ItemTypeAll = "all"

// ParseItemType accepts one of the item type values.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(strings.ToLower(strings.TrimSpace(s)))
	if !ValidItemTypes[t] {
		return "", fmt.Errorf("%w: %q", ErrInvalidItemType, s)
	}
	return t, nil
}

// DefaultUserID stands in for the signed-in user until authentication exists.
const DefaultUserID = "user1"

// LibraryItem is a saved piece of generated content.
type LibraryItem struct {
	ID        string
	Type      ItemType
	Title     string
	Content   string
	Metadata  map[string]string
	CreatedAt time.Time
	UserID    string
}

func (i *LibraryItem) Validate() error {
	if !ValidItemTypes[i.Type] {
		return fmt.Errorf("%w: %q", ErrInvalidItemType, i.Type)
	}
	if strings.TrimSpace(i.Title) == "" {
		return ErrMissingTitle
	}
	return nil
}

// Matches reports whether query occurs in the title or content, ignoring case.
// An empty query matches everything.
func (i *LibraryItem) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(i.Title), q) ||
		strings.Contains(strings.ToLower(i.Content), q)
}

// LibraryStats counts saved items per type for the dashboard.
type LibraryStats struct {
	Total    int
	ByType   map[ItemType]int
	ThisWeek map[ItemType]int
}
