// Package pipeline turns one textbook page into one worksheet per selected
// grade.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/intelligence"
	"github.com/sahayak-edu/sahayak/internal/ocr"
)

// Progress checkpoints reported during a run.
const (
	ProgressReceived  = 25
	ProgressExtracted = 50
	ProgressAnalyzed  = 75
	ProgressGenerate  = 90
	ProgressDone      = 100
)

// ProgressFunc receives each new progress value. Calls come from the
// goroutine running the pipeline and are strictly increasing.
type ProgressFunc func(percent int)

// Config tunes an Orchestrator.
type Config struct {
	// Workers bounds concurrent per-grade generation; 1 runs grades one at a
	// time in display order.
	Workers int
	// StagePause is the pause between checkpoints before and after
	// extraction. Zero disables it.
	StagePause        time.Duration
	ExtractionTimeout time.Duration
	GenerationTimeout time.Duration
	DefaultSubject    string
}

func DefaultConfig() Config {
	return Config{
		Workers:           4,
		StagePause:        time.Second,
		ExtractionTimeout: 60 * time.Second,
		GenerationTimeout: 90 * time.Second,
		DefaultSubject:    domain.DefaultSubject,
	}
}

// Request is one pipeline invocation.
type Request struct {
	Image   *domain.UploadedImage
	Grades  domain.GradeSet
	Subject string
}

// Orchestrator sequences extraction and per-grade generation.
type Orchestrator struct {
	extractor ocr.Extractor
	generator intelligence.WorksheetService
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

func NewOrchestrator(extractor ocr.Extractor, generator intelligence.WorksheetService, cfg Config, logger *slog.Logger) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.DefaultSubject == "" {
		cfg.DefaultSubject = domain.DefaultSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		extractor: extractor,
		generator: generator,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes the pipeline for the default subject.
func (o *Orchestrator) Run(ctx context.Context, image *domain.UploadedImage, grades domain.GradeSet, onProgress ProgressFunc) (*Run, error) {
	return o.Execute(ctx, Request{Image: image, Grades: grades}, onProgress)
}

// Execute validates req and drives a run to a terminal state. Validation
// errors return a nil Run. Extraction failures return the failed Run and an
// *ExtractionError, which matches ErrExtraction. Cancellation returns the
// cancelled Run and ctx.Err(). Per-grade generation failures are never
// errors.
func (o *Orchestrator) Execute(ctx context.Context, req Request, onProgress ProgressFunc) (*Run, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	// Inputs are copied so callers cannot mutate them mid-run.
	img := *req.Image
	img.Data = append([]byte(nil), req.Image.Data...)
	grades := req.Grades.Clone()
	subject := domain.CoalesceStr(strings.TrimSpace(req.Subject), o.cfg.DefaultSubject)

	run := newRun(uuid.NewString(), grades, subject, img.Name, o.now())
	report := func(p int) {
		if run.advance(p) && onProgress != nil {
			onProgress(p)
		}
	}

	err := o.execute(ctx, run, img, report)
	o.logRun(ctx, run, err)
	return run, err
}

func validate(req Request) error {
	if req.Image == nil || len(req.Image.Data) == 0 {
		return ErrNoImage
	}
	if err := domain.ValidateImage(*req.Image); err != nil {
		return err
	}
	if req.Grades.Len() == 0 {
		return ErrNoGrades
	}
	for g := range req.Grades {
		if !g.Valid() {
			return fmt.Errorf("%w: %d", domain.ErrInvalidGrade, g)
		}
	}
	return nil
}

func (o *Orchestrator) execute(ctx context.Context, run *Run, img domain.UploadedImage, report func(int)) error {
	if err := run.transition(StateExtracting); err != nil {
		return err
	}
	report(ProgressReceived)
	if err := o.pause(ctx); err != nil {
		return o.cancel(run, err)
	}
	report(ProgressExtracted)

	text, err := o.extract(ctx, img)
	if err != nil {
		if ctx.Err() != nil {
			return o.cancel(run, ctx.Err())
		}
		wrapped := &ExtractionError{Err: err}
		run.finish(StateFailed, nil, wrapped, o.now())
		return wrapped
	}
	run.setExtracted(text)

	if err := o.pause(ctx); err != nil {
		return o.cancel(run, err)
	}
	report(ProgressAnalyzed)
	if err := o.pause(ctx); err != nil {
		return o.cancel(run, err)
	}

	if err := run.transition(StateGenerating); err != nil {
		return err
	}
	report(ProgressGenerate)

	results, err := o.generateAll(ctx, text, run.Grades, run.Subject)
	if err != nil {
		return o.cancel(run, err)
	}

	run.finish(StateSucceeded, results, nil, o.now())
	report(ProgressDone)
	return nil
}

func (o *Orchestrator) extract(ctx context.Context, img domain.UploadedImage) (string, error) {
	if o.cfg.ExtractionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.ExtractionTimeout)
		defer cancel()
	}
	text, err := o.extractor.Extract(ctx, img)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ocr.ErrNoText
	}
	return text, nil
}

// generateAll fans out one generation per grade and joins the results.
// Only cancellation of ctx is an error.
func (o *Orchestrator) generateAll(ctx context.Context, text string, grades domain.GradeSet, subject string) (map[domain.Grade]domain.Worksheet, error) {
	var (
		mu      sync.Mutex
		results = make(map[domain.Grade]domain.Worksheet, grades.Len())
	)

	var g errgroup.Group
	g.SetLimit(o.cfg.Workers)
	for _, grade := range grades.Sorted() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ws := o.generateOne(ctx, text, grade, subject)
			mu.Lock()
			results[grade] = ws
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for grade := range grades {
		if _, ok := results[grade]; !ok {
			results[grade] = intelligence.FallbackWorksheet(grade, subject)
		}
	}
	return results, nil
}

func (o *Orchestrator) generateOne(ctx context.Context, text string, grade domain.Grade, subject string) domain.Worksheet {
	if o.cfg.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.GenerationTimeout)
		defer cancel()
	}
	ws := o.generator.Generate(ctx, text, grade, subject)
	if ws.Grade != grade || ws.Content == "" {
		o.logger.WarnContext(ctx, "worksheet_invalid_result", "grade", int(grade))
		return intelligence.FallbackWorksheet(grade, subject)
	}
	return ws
}

// cancel ends the run after ctx was cancelled; err is ctx.Err().
func (o *Orchestrator) cancel(run *Run, err error) error {
	run.finish(StateCancelled, nil, err, o.now())
	return err
}

func (o *Orchestrator) pause(ctx context.Context) error {
	if o.cfg.StagePause <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(o.cfg.StagePause)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (o *Orchestrator) logRun(ctx context.Context, run *Run, err error) {
	attrs := []any{
		"run_id", run.ID,
		"grades", run.Grades.String(),
		"state", string(run.State()),
		"duration_ms", o.now().Sub(run.StartedAt).Milliseconds(),
	}
	if err != nil {
		o.logger.ErrorContext(ctx, "pipeline_run", append(attrs, "error", err.Error())...)
		return
	}
	o.logger.InfoContext(ctx, "pipeline_run", append(attrs, "fallbacks", run.FallbackCount())...)
}
