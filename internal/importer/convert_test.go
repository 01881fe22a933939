package importer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestConvert(t *testing.T) {
	items, err := Convert(validArchive(), "teacher7", fixedNow)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "a1", items[0].ID)
	assert.Equal(t, domain.ItemStory, items[0].Type)
	assert.Equal(t, fixedNow, items[0].CreatedAt)
	assert.Equal(t, "teacher7", items[0].UserID)

	assert.NotEmpty(t, items[1].ID, "missing ids are generated")
	assert.Equal(t, domain.ItemWorksheet, items[1].Type)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), items[1].CreatedAt)
	assert.NotNil(t, items[1].Metadata)
}

func TestFromItems_RoundTripsThroughFile(t *testing.T) {
	src := []*domain.LibraryItem{{
		ID: "s1", Type: domain.ItemVisualAid, Title: "Water Cycle", Content: "draw",
		Metadata:  map[string]string{"topic": "water"},
		CreatedAt: time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC),
		UserID:    "someone",
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteArchive(&buf, FromItems(src, fixedNow)))
	assert.Contains(t, buf.String(), `"exported_at": "2026-03-10T09:00:00Z"`)

	path := filepath.Join(t.TempDir(), "library.json")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	a, err := LoadArchive(path)
	require.NoError(t, err)
	require.Empty(t, ValidateArchive(a))

	items, err := Convert(a, "other", fixedNow)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "s1", items[0].ID)
	assert.Equal(t, "water", items[0].Metadata["topic"])
	assert.Equal(t, src[0].CreatedAt, items[0].CreatedAt)
	assert.Equal(t, "other", items[0].UserID)
}

func TestLoadArchive_MissingFile(t *testing.T) {
	_, err := LoadArchive(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
