// Package importer reads and writes library archives: JSON files that move
// saved items between installations.
package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ArchiveVersion is the archive layout written by Export and accepted by
// ValidateArchive.
const ArchiveVersion = 1

// Archive is the top-level JSON structure of a library archive.
type Archive struct {
	Version    int          `json:"version"`
	ExportedAt string       `json:"exported_at,omitempty"`
	Items      []ItemImport `json:"items"`
}

// ItemImport is one saved item in an archive. ID and CreatedAt are optional;
// missing ones are generated on import.
type ItemImport struct {
	ID        string            `json:"id,omitempty"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt *string           `json:"created_at,omitempty"`
}

// LoadArchive reads and parses an archive file.
func LoadArchive(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseArchive(data)
}

func ParseArchive(data []byte) (*Archive, error) {
	var a Archive
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing archive: %w", err)
	}
	return &a, nil
}

// WriteArchive writes a as indented JSON.
func WriteArchive(w io.Writer, a *Archive) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}
