package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahayak-edu/sahayak/internal/db"
	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/repository"
)

type libraryService struct {
	items    repository.LibraryRepo
	repos    repository.LibraryRepoFactory
	uow      db.UnitOfWork
	observer UseCaseObserver
	now      func() time.Time
}

func NewLibraryService(
	items repository.LibraryRepo,
	repos repository.LibraryRepoFactory,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) LibraryService {
	return &libraryService{
		items:    items,
		repos:    repos,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *libraryService) Save(ctx context.Context, item *domain.LibraryItem) (id string, err error) {
	defer s.observe(ctx, "save-library-item", s.now(), &err, map[string]any{"type": string(item.Type)})

	s.prepare(item)
	if err = item.Validate(); err != nil {
		return "", err
	}
	if err = s.items.Create(ctx, item); err != nil {
		return "", err
	}
	return item.ID, nil
}

func (s *libraryService) prepare(item *domain.LibraryItem) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.now()
	}
	if item.UserID == "" {
		item.UserID = domain.DefaultUserID
	}
}

func (s *libraryService) Get(ctx context.Context, id string) (*domain.LibraryItem, error) {
	return s.items.GetByID(ctx, id)
}

func (s *libraryService) List(ctx context.Context, userID string) ([]*domain.LibraryItem, error) {
	return s.items.ListByUser(ctx, userOrDefault(userID))
}

func (s *libraryService) Delete(ctx context.Context, id string) (err error) {
	defer s.observe(ctx, "delete-library-item", s.now(), &err, map[string]any{"id": id})
	return s.items.Delete(ctx, id)
}

func (s *libraryService) Search(ctx context.Context, userID, query, itemType string) ([]*domain.LibraryItem, error) {
	var want domain.ItemType
	if t := strings.TrimSpace(itemType); t != "" && !strings.EqualFold(t, domain.ItemTypeAll) {
		parsed, err := domain.ParseItemType(t)
		if err != nil {
			return nil, err
		}
		want = parsed
	}

	items, err := s.items.ListByUser(ctx, userOrDefault(userID))
	if err != nil {
		return nil, err
	}
	out := make([]*domain.LibraryItem, 0, len(items))
	for _, item := range items {
		if want != "" && item.Type != want {
			continue
		}
		if item.Matches(query) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *libraryService) Stats(ctx context.Context, userID string) (domain.LibraryStats, error) {
	items, err := s.items.ListByUser(ctx, userOrDefault(userID))
	if err != nil {
		return domain.LibraryStats{}, err
	}
	return aggregateStats(items, s.now()), nil
}

func (s *libraryService) SeedIfEmpty(ctx context.Context, userID string) (n int, err error) {
	userID = userOrDefault(userID)
	defer s.observe(ctx, "seed-library", s.now(), &err, map[string]any{"user_id": userID})

	existing, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	samples := sampleLibraryItems(userID, s.now())
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txItems := s.repos(tx)
		for _, item := range samples {
			s.prepare(item)
			if err := txItems.Create(ctx, item); err != nil {
				return fmt.Errorf("seeding %q: %w", item.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(samples), nil
}

func (s *libraryService) observe(ctx context.Context, name string, startedAt time.Time, errp *error, fields map[string]any) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  s.now().Sub(startedAt),
		Success:   *errp == nil,
		Err:       *errp,
		Fields:    fields,
	})
}

func userOrDefault(userID string) string {
	if strings.TrimSpace(userID) == "" {
		return domain.DefaultUserID
	}
	return userID
}
