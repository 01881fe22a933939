package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/intelligence"
	"github.com/sahayak-edu/sahayak/internal/ocr"
	"github.com/sahayak-edu/sahayak/internal/pipeline"
	"github.com/sahayak-edu/sahayak/internal/repository"
	"github.com/sahayak-edu/sahayak/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(extractor ocr.Extractor) *pipeline.Orchestrator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen := intelligence.NewWorksheetService(testutil.NewFakeLLM("Q1. 2 + 2 = ____"), logger)
	cfg := pipeline.DefaultConfig()
	cfg.StagePause = 0
	return pipeline.NewOrchestrator(extractor, gen, cfg, logger)
}

func TestWorksheetService_GenerateRegistersRun(t *testing.T) {
	orch := newTestOrchestrator(ocr.NewSimulatedExtractor(0))
	mem := repository.NewMemoryLibraryRepo()
	svc := NewWorksheetService(orch, mem.Repos(), repository.MemoryUnitOfWork{}, 2)
	ctx := context.Background()

	run, err := svc.Generate(ctx, pipeline.Request{
		Image:  testutil.NewTestImage(),
		Grades: domain.NewGradeSet(3, 8),
	}, nil)
	require.NoError(t, err)

	got, ok := svc.GetRun(run.ID)
	require.True(t, ok)
	assert.Same(t, run, got)
	assert.Len(t, got.Results(), 2)
}

func TestWorksheetService_FailedRunNotRegistered(t *testing.T) {
	orch := newTestOrchestrator(ocr.ExtractorFunc(func(context.Context, domain.UploadedImage) (string, error) {
		return "", ocr.ErrNoText
	}))
	mem := repository.NewMemoryLibraryRepo()
	svc := NewWorksheetService(orch, mem.Repos(), repository.MemoryUnitOfWork{}, 2)

	run, err := svc.Generate(context.Background(), pipeline.Request{
		Image:  testutil.NewTestImage(),
		Grades: domain.NewGradeSet(5),
	}, nil)
	require.ErrorIs(t, err, pipeline.ErrExtraction)
	require.NotNil(t, run)

	_, ok := svc.GetRun(run.ID)
	assert.False(t, ok)

	_, err = svc.SaveAll(context.Background(), run, "")
	assert.ErrorIs(t, err, ErrRunNotComplete)
}

func TestWorksheetService_SaveAll(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewWorksheetService(
		newTestOrchestrator(ocr.NewSimulatedExtractor(0)),
		repository.SQLiteLibraryRepos,
		testutil.NewTestUoW(database),
		0,
	)
	ctx := context.Background()

	run, err := svc.Generate(ctx, pipeline.Request{
		Image:   testutil.NewTestImage(),
		Grades:  domain.NewGradeSet(8, 3),
		Subject: "Science",
	}, nil)
	require.NoError(t, err)

	ids, err := svc.SaveAll(ctx, run, "")
	require.NoError(t, err)
	require.Len(t, ids, 2)

	items, err := repository.NewSQLiteLibraryRepo(database).ListByUser(ctx, domain.DefaultUserID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	byGrade := map[string]*domain.LibraryItem{}
	for _, it := range items {
		assert.Equal(t, domain.ItemWorksheet, it.Type)
		assert.Equal(t, "Science", it.Metadata["subject"])
		byGrade[it.Metadata["grade"]] = it
	}
	require.Contains(t, byGrade, "3")
	require.Contains(t, byGrade, "8")
	assert.Equal(t, "Grade 3 Worksheet - Science", byGrade["3"].Title)

	// Saving the same run again returns the stored ids without duplicating.
	again, err := svc.SaveAll(ctx, run, "")
	require.NoError(t, err)
	assert.Equal(t, ids, again)
	items, err = repository.NewSQLiteLibraryRepo(database).ListByUser(ctx, domain.DefaultUserID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestWorksheetService_SaveGrade(t *testing.T) {
	mem := repository.NewMemoryLibraryRepo()
	svc := NewWorksheetService(newTestOrchestrator(ocr.NewSimulatedExtractor(0)), mem.Repos(), repository.MemoryUnitOfWork{}, 0)
	ctx := context.Background()

	run, err := svc.Generate(ctx, pipeline.Request{
		Image:  testutil.NewTestImage(),
		Grades: domain.NewGradeSet(3, 8),
	}, nil)
	require.NoError(t, err)

	id, err := svc.SaveGrade(ctx, run, 8, "")
	require.NoError(t, err)
	item, err := mem.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "8", item.Metadata["grade"])
	assert.Equal(t, run.ID, item.Metadata["run_id"])

	again, err := svc.SaveGrade(ctx, run, 8, "")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	// Saving everything afterwards adds only the missing grade.
	ids, err := svc.SaveAll(ctx, run, "")
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, id)
	items, err := mem.ListByUser(ctx, domain.DefaultUserID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = svc.SaveGrade(ctx, run, 5, "")
	assert.ErrorIs(t, err, ErrGradeNotInRun)
}

func TestRunRegistry_EvictsOldest(t *testing.T) {
	orch := newTestOrchestrator(ocr.NewSimulatedExtractor(0))
	mem := repository.NewMemoryLibraryRepo()
	svc := NewWorksheetService(orch, mem.Repos(), repository.MemoryUnitOfWork{}, 2)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := svc.Generate(ctx, pipeline.Request{Image: testutil.NewTestImage(), Grades: domain.NewGradeSet(1)}, nil)
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	_, ok := svc.GetRun(ids[0])
	assert.False(t, ok)
	for _, id := range ids[1:] {
		_, ok := svc.GetRun(id)
		assert.True(t, ok)
	}
}
