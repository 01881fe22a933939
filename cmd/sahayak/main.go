package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/sahayak-edu/sahayak/internal/cache"
	"github.com/sahayak-edu/sahayak/internal/cli"
	"github.com/sahayak-edu/sahayak/internal/config"
	"github.com/sahayak-edu/sahayak/internal/db"
	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/intelligence"
	"github.com/sahayak-edu/sahayak/internal/llm"
	"github.com/sahayak-edu/sahayak/internal/ocr"
	"github.com/sahayak-edu/sahayak/internal/pipeline"
	"github.com/sahayak-edu/sahayak/internal/repository"
	"github.com/sahayak-edu/sahayak/internal/server"
	"github.com/sahayak-edu/sahayak/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(""); err != nil {
		return err
	}
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	// Wire storage
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	observer := service.NewSlogUseCaseObserver(logger)
	library := service.NewLibraryService(st.repo, st.repos, st.uow, observer)
	imports := service.NewImportService(st.repo, st.repos, st.uow, observer)
	if cfg.Store.Seed {
		if n, err := library.SeedIfEmpty(ctx, domain.DefaultUserID); err != nil {
			logger.Warn("seed_library_failed", "error", err.Error())
		} else if n > 0 {
			logger.Debug("seeded_library", "items", n)
		}
	}

	// Wire the model
	var llmObserver llm.Observer = llm.NoopObserver{}
	if cfg.LLM.LogCalls {
		llmObserver = llm.NewLogObserver(logger)
	}
	model, modelCloser, err := llm.NewClient(ctx, cfg.LLM, llmObserver)
	if err != nil {
		return fmt.Errorf("creating llm client: %w", err)
	}
	defer modelCloser.Close()

	// Wire extraction behind the cache
	cacheClient, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer cacheClient.Close()

	var extractor ocr.Extractor
	switch cfg.OCR.Mode {
	case config.OCRVision:
		extractor = ocr.NewVisionExtractor(model)
	default:
		extractor = ocr.NewSimulatedExtractor(time.Duration(cfg.OCR.SimulatedDelayMs) * time.Millisecond)
	}
	extractor = ocr.NewCachingExtractor(extractor, cacheClient, cfg.OCR.Mode, cfg.CacheTTL(), logger)

	orch := pipeline.NewOrchestrator(extractor, intelligence.NewWorksheetService(model, logger), cfg.PipelineSettings(), logger)
	worksheets := service.NewWorksheetService(orch, st.repos, st.uow, cfg.Server.KeepRuns, observer)

	app := &cli.App{
		Worksheets: worksheets,
		Session:    pipeline.NewSession(orch),
		Library:    library,
		Import:     imports,
		Stories:    intelligence.NewStoryService(model),
		Assistant:  intelligence.NewAssistantService(model),
		VisualAids: intelligence.NewVisualAidService(model),
		Reading:    intelligence.NewReadingService(model, logger),
	}

	// Detect interactive terminal for forms and live views.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	app.Serve = func(ctx context.Context, addr string) error {
		addr = domain.CoalesceStr(addr, cfg.Server.Addr)
		router := server.NewRouter(server.Deps{
			Worksheets:     app.Worksheets,
			Library:        app.Library,
			Import:         app.Import,
			Stories:        app.Stories,
			Assistant:      app.Assistant,
			VisualAids:     app.VisualAids,
			Reading:        app.Reading,
			Logger:         logger,
			MaxUploadBytes: cfg.Server.MaxUploadBytes,
		})
		return server.ListenAndServe(ctx, server.ServerConfig{
			Addr:            addr,
			ReadTimeout:     time.Duration(cfg.Server.ReadTimeoutMs) * time.Millisecond,
			WriteTimeout:    time.Duration(cfg.Server.WriteTimeoutMs) * time.Millisecond,
			ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeoutMs) * time.Millisecond,
		}, router, logger)
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

// store bundles the library repository with its transaction plumbing.
type store struct {
	repo  repository.LibraryRepo
	repos repository.LibraryRepoFactory
	uow   db.UnitOfWork
	close func() error
}

func (s *store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func openStore(ctx context.Context, cfg config.StoreConfig) (*store, error) {
	switch cfg.Driver {
	case config.StoreMemory:
		mem := repository.NewMemoryLibraryRepo()
		return &store{repo: mem, repos: mem.Repos(), uow: repository.MemoryUnitOfWork{}}, nil

	case config.StorePostgres:
		conn, err := db.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		return sqlStore(conn, repository.PostgresLibraryRepos), nil

	default:
		conn, err := db.OpenDB(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		return sqlStore(conn, repository.SQLiteLibraryRepos), nil
	}
}

func sqlStore(conn *sql.DB, repos repository.LibraryRepoFactory) *store {
	return &store{
		repo:  repos(conn),
		repos: repos,
		uow:   db.NewSQLUnitOfWork(conn),
		close: conn.Close,
	}
}

func openCache(ctx context.Context, cfg config.CacheConfig) (cache.Client, error) {
	switch cfg.Driver {
	case config.CacheRedis:
		c, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return c, nil
	case config.CacheNone:
		return cache.NoopClient{}, nil
	default:
		return cache.NewMemoryClient(cfg.MaxEntries), nil
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
