package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sahayak-edu/sahayak/internal/db"
	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/pipeline"
	"github.com/sahayak-edu/sahayak/internal/repository"
)

type worksheetService struct {
	orch     *pipeline.Orchestrator
	repos    repository.LibraryRepoFactory
	uow      db.UnitOfWork
	runs     *runRegistry
	observer UseCaseObserver
}

func NewWorksheetService(
	orch *pipeline.Orchestrator,
	repos repository.LibraryRepoFactory,
	uow db.UnitOfWork,
	keepRuns int,
	observers ...UseCaseObserver,
) WorksheetService {
	return &worksheetService{
		orch:     orch,
		repos:    repos,
		uow:      uow,
		runs:     newRunRegistry(keepRuns),
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *worksheetService) Generate(ctx context.Context, req pipeline.Request, onProgress pipeline.ProgressFunc) (run *pipeline.Run, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"grades": req.Grades.String()}
	defer func() {
		if run != nil {
			fields["run_id"] = run.ID
			fields["state"] = string(run.State())
			fields["fallbacks"] = run.FallbackCount()
		}
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "generate-worksheets",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	run, err = s.orch.Execute(ctx, req, onProgress)
	if run != nil && err == nil {
		s.runs.put(run)
	}
	return run, err
}

func (s *worksheetService) GetRun(runID string) (*pipeline.Run, bool) {
	return s.runs.get(runID)
}

func (s *worksheetService) SaveAll(ctx context.Context, run *pipeline.Run, userID string) ([]string, error) {
	if run == nil || run.State() != pipeline.StateSucceeded {
		return s.observeSave(ctx, "save-worksheets", nil, ErrRunNotComplete)
	}
	items := worksheetItems(run, run.Worksheets(), userOrDefault(userID), time.Now().UTC())
	return s.observeSave(ctx, "save-worksheets", items, nil)
}

func (s *worksheetService) SaveGrade(ctx context.Context, run *pipeline.Run, grade domain.Grade, userID string) (string, error) {
	if run == nil || run.State() != pipeline.StateSucceeded {
		_, err := s.observeSave(ctx, "save-worksheet", nil, ErrRunNotComplete)
		return "", err
	}
	ws, ok := run.Worksheet(grade)
	if !ok {
		_, err := s.observeSave(ctx, "save-worksheet", nil, fmt.Errorf("grade %d: %w", int(grade), ErrGradeNotInRun))
		return "", err
	}
	items := worksheetItems(run, []domain.Worksheet{ws}, userOrDefault(userID), time.Now().UTC())
	ids, err := s.observeSave(ctx, "save-worksheet", items, nil)
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// observeSave stores items unless failed is set, and reports the use case.
func (s *worksheetService) observeSave(ctx context.Context, name string, items []*domain.LibraryItem, failed error) (ids []string, err error) {
	startedAt := time.Now().UTC()
	created := 0
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      name,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"saved": len(ids), "created": created},
		})
	}()
	if failed != nil {
		return nil, failed
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txItems := s.repos(tx)
		created = 0
		for _, item := range items {
			_, err := txItems.GetByID(ctx, item.ID)
			switch {
			case err == nil:
				continue
			case !errors.Is(err, repository.ErrNotFound):
				return fmt.Errorf("checking %s: %w", item.Title, err)
			}
			if err := txItems.Create(ctx, item); err != nil {
				return fmt.Errorf("saving %s: %w", item.Title, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids = make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids, nil
}

// worksheetItems converts worksheets of run into library items. IDs are
// derived from the run and grade, so saving the same worksheet again finds
// the stored copy instead of adding another.
func worksheetItems(run *pipeline.Run, sheets []domain.Worksheet, userID string, now time.Time) []*domain.LibraryItem {
	items := make([]*domain.LibraryItem, 0, len(sheets))
	for _, ws := range sheets {
		items = append(items, &domain.LibraryItem{
			ID:      fmt.Sprintf("%s-g%d", run.ID, int(ws.Grade)),
			Type:    domain.ItemWorksheet,
			Title:   ws.Title,
			Content: ws.Content,
			Metadata: map[string]string{
				"grade":   strconv.Itoa(int(ws.Grade)),
				"subject": ws.Subject,
				"source":  string(ws.Source),
				"run_id":  run.ID,
			},
			CreatedAt: now,
			UserID:    userID,
		})
	}
	return items
}
