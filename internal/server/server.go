// Package server exposes the teaching tools over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sahayak-edu/sahayak/internal/intelligence"
	"github.com/sahayak-edu/sahayak/internal/service"
)

// Deps are the services the API is built on.
type Deps struct {
	Worksheets service.WorksheetService
	Library    service.LibraryService
	// Import serves archive export and import. Nil disables both routes.
	Import     service.ImportService
	Stories    intelligence.StoryService
	Assistant  intelligence.AssistantService
	VisualAids intelligence.VisualAidService
	Reading    intelligence.ReadingService
	Logger     *slog.Logger

	// MaxUploadBytes caps multipart bodies. Zero means 10 MiB.
	MaxUploadBytes int64
}

type handlers struct {
	Deps
	logger *slog.Logger
}

// NewRouter wires every route onto a chi router.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 10 << 20
	}
	h := &handlers{Deps: deps, logger: logger.With("component", "http")}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "sahayak"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/grades", h.listGrades)

		r.Route("/worksheets", func(r chi.Router) {
			r.Post("/", h.generateWorksheets)
			r.Route("/{runID}", func(r chi.Router) {
				r.Get("/", h.getRun)
				r.Post("/save", h.saveRun)
				r.Post("/{grade}/save", h.saveRunGrade)
				r.Get("/{grade}/download", h.downloadWorksheet)
			})
		})

		r.Route("/library", func(r chi.Router) {
			r.Get("/", h.searchLibrary)
			r.Post("/", h.saveItem)
			r.Get("/stats", h.libraryStats)
			if deps.Import != nil {
				r.Get("/export", h.exportLibrary)
				r.Post("/import", h.importLibrary)
			}
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getItem)
				r.Delete("/", h.deleteItem)
				r.Get("/download", h.downloadItem)
			})
		})

		r.Post("/stories", h.generateStory)
		r.Post("/assistant", h.askAssistant)
		r.Post("/visual-aids", h.generateVisualAid)
		r.Post("/reading-assessments", h.analyzeReading)
	})

	return r
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.LogAttrs(r.Context(), slog.LevelInfo, "http_request",
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// ListenAndServe serves handler until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, cfg ServerConfig, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listen", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	logger.Info("http_shutdown", "addr", cfg.Addr)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
