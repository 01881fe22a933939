package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/sahayak-edu/sahayak/internal/domain"
)

// ValidateArchive checks an archive before conversion and returns every
// problem found, not just the first.
func ValidateArchive(a *Archive) []error {
	var errs []error

	if a.Version != ArchiveVersion {
		errs = append(errs, fmt.Errorf("version: unsupported archive version %d (expected %d)", a.Version, ArchiveVersion))
	}
	if len(a.Items) == 0 {
		errs = append(errs, fmt.Errorf("items: archive has no items"))
	}

	seen := make(map[string]int)
	for i, it := range a.Items {
		errs = append(errs, validateItem(i, &it)...)
		if it.ID == "" {
			continue
		}
		if first, dup := seen[it.ID]; dup {
			errs = append(errs, fmt.Errorf("items[%d].id: duplicate id %q (first used by items[%d])", i, it.ID, first))
		} else {
			seen[it.ID] = i
		}
	}
	return errs
}

func validateItem(i int, it *ItemImport) []error {
	var errs []error

	if _, err := domain.ParseItemType(it.Type); err != nil {
		errs = append(errs, fmt.Errorf("items[%d].type: %w", i, err))
	}
	if strings.TrimSpace(it.Title) == "" {
		errs = append(errs, fmt.Errorf("items[%d].title is required", i))
	}
	if it.CreatedAt != nil {
		if _, err := time.Parse(time.RFC3339, *it.CreatedAt); err != nil {
			errs = append(errs, fmt.Errorf("items[%d].created_at: invalid timestamp %q (expected RFC 3339)", i, *it.CreatedAt))
		}
	}
	return errs
}
