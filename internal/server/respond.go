package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/intelligence"
	"github.com/sahayak-edu/sahayak/internal/llm"
	"github.com/sahayak-edu/sahayak/internal/pipeline"
	"github.com/sahayak-edu/sahayak/internal/repository"
	"github.com/sahayak-edu/sahayak/internal/service"
)

// StatusClientClosedRequest is the non-standard code used when the caller
// went away before the work finished.
const StatusClientClosedRequest = 499

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps domain and collaborator errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrNoImage),
		errors.Is(err, pipeline.ErrNoGrades),
		errors.Is(err, domain.ErrNotAnImage),
		errors.Is(err, domain.ErrInvalidGrade),
		errors.Is(err, domain.ErrInvalidItemType),
		errors.Is(err, domain.ErrMissingTitle),
		errors.Is(err, domain.ErrUnknownLanguage),
		errors.Is(err, domain.ErrUnknownVisualType),
		errors.Is(err, intelligence.ErrEmptyPrompt),
		errors.Is(err, service.ErrInvalidArchive):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrGradeNotInRun):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRunNotComplete),
		errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	case errors.Is(err, pipeline.ErrExtraction),
		errors.Is(err, llm.ErrUnavailable),
		errors.Is(err, llm.ErrTimeout),
		errors.Is(err, llm.ErrRetryExhausted),
		errors.Is(err, llm.ErrEmptyResponse),
		errors.Is(err, llm.ErrInvalidOutput),
		errors.Is(err, llm.ErrUnsupported),
		errors.Is(err, llm.ErrMissingAPIKey),
		errors.Is(err, llm.ErrDisabled):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. Server-side failures are logged;
// client mistakes are not.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.LogAttrs(r.Context(), slog.LevelError, "request_failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	writeError(w, status, err.Error())
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
