package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sahayak-edu/sahayak/internal/db"
	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/importer"
	"github.com/sahayak-edu/sahayak/internal/repository"
)

// ImportResult summarizes a completed import.
type ImportResult struct {
	Imported int
	ByType   map[domain.ItemType]int
}

type importService struct {
	items    repository.LibraryRepo
	repos    repository.LibraryRepoFactory
	uow      db.UnitOfWork
	observer UseCaseObserver
	now      func() time.Time
}

func NewImportService(
	items repository.LibraryRepo,
	repos repository.LibraryRepoFactory,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) ImportService {
	return &importService{
		items:    items,
		repos:    repos,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *importService) ImportLibrary(ctx context.Context, path, userID string) (*ImportResult, error) {
	archive, err := importer.LoadArchive(path)
	if err != nil {
		return nil, fmt.Errorf("loading archive: %w", err)
	}
	return s.ImportArchive(ctx, archive, userID)
}

func (s *importService) ImportArchive(ctx context.Context, archive *importer.Archive, userID string) (result *ImportResult, err error) {
	startedAt := s.now()
	defer func() {
		fields := map[string]any{"user_id": userOrDefault(userID)}
		if result != nil {
			fields["imported"] = result.Imported
		}
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "import-library",
			StartedAt: startedAt,
			Duration:  s.now().Sub(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if errs := importer.ValidateArchive(archive); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	items, err := importer.Convert(archive, userOrDefault(userID), s.now())
	if err != nil {
		return nil, fmt.Errorf("converting archive: %w", err)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txItems := s.repos(tx)
		for _, item := range items {
			if err := item.Validate(); err != nil {
				return fmt.Errorf("item %q: %w", item.Title, err)
			}
			if err := txItems.Create(ctx, item); err != nil {
				return fmt.Errorf("importing %q: %w", item.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result = &ImportResult{Imported: len(items), ByType: make(map[domain.ItemType]int)}
	for _, item := range items {
		result.ByType[item.Type]++
	}
	return result, nil
}

func (s *importService) ExportLibrary(ctx context.Context, userID string) (*importer.Archive, error) {
	items, err := s.items.ListByUser(ctx, userOrDefault(userID))
	if err != nil {
		return nil, err
	}
	return importer.FromItems(items, s.now()), nil
}

func formatValidationErrors(errs []error) error {
	var b strings.Builder
	for _, e := range errs {
		fmt.Fprintf(&b, "\n  - %s", e.Error())
	}
	return fmt.Errorf("%w (%d errors):%s", ErrInvalidArchive, len(errs), b.String())
}
