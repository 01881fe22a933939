package service

import (
	"context"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/importer"
	"github.com/sahayak-edu/sahayak/internal/pipeline"
)

type LibraryService interface {
	// Save stores item and returns its id. ID, CreatedAt and UserID are
	// filled in when empty.
	Save(ctx context.Context, item *domain.LibraryItem) (string, error)
	Get(ctx context.Context, id string) (*domain.LibraryItem, error)
	List(ctx context.Context, userID string) ([]*domain.LibraryItem, error)
	Delete(ctx context.Context, id string) error
	// Search filters a user's items by a case-insensitive title/content
	// match and by type; itemType "" or "all" disables the type filter.
	Search(ctx context.Context, userID, query, itemType string) ([]*domain.LibraryItem, error)
	Stats(ctx context.Context, userID string) (domain.LibraryStats, error)
	// SeedIfEmpty loads the sample items for a user with no saved content.
	SeedIfEmpty(ctx context.Context, userID string) (int, error)
}

type WorksheetService interface {
	// Generate runs the multigrade pipeline and remembers the run so its
	// worksheets can be downloaded or saved later.
	Generate(ctx context.Context, req pipeline.Request, onProgress pipeline.ProgressFunc) (*pipeline.Run, error)
	GetRun(runID string) (*pipeline.Run, bool)
	// SaveAll stores every worksheet of a succeeded run in one transaction.
	// Worksheets saved earlier are kept and their ids returned, so saving
	// again never duplicates content.
	SaveAll(ctx context.Context, run *pipeline.Run, userID string) ([]string, error)
	// SaveGrade stores a single worksheet of a succeeded run, with the same
	// repeat behaviour as SaveAll.
	SaveGrade(ctx context.Context, run *pipeline.Run, grade domain.Grade, userID string) (string, error)
}

type ImportService interface {
	// ImportLibrary loads an archive file and stores its items for userID.
	ImportLibrary(ctx context.Context, path, userID string) (*ImportResult, error)
	// ImportArchive validates and stores an already parsed archive. Either
	// every item is stored or none is.
	ImportArchive(ctx context.Context, archive *importer.Archive, userID string) (*ImportResult, error)
	ExportLibrary(ctx context.Context, userID string) (*importer.Archive, error)
}
