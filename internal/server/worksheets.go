package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/export"
	"github.com/sahayak-edu/sahayak/internal/pipeline"
	"github.com/sahayak-edu/sahayak/internal/repository"
)

func (h *handlers) listGrades(w http.ResponseWriter, r *http.Request) {
	grades := domain.AllGrades()
	out := make([]gradeDTO, 0, len(grades))
	for _, g := range grades {
		out = append(out, gradeDTO{Grade: int(g.Grade), Label: g.Label, Band: string(g.Band)})
	}
	writeJSON(w, http.StatusOK, out)
}

// generateWorksheets accepts multipart form data: an "image" file plus
// "grades" ("3,8") and an optional "subject".
func (h *handlers) generateWorksheets(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid upload: %v", err))
		return
	}

	img, err := readUpload(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := domain.ValidateImage(*img); err != nil {
		h.fail(w, r, err)
		return
	}
	grades, err := domain.ParseGradeSet(r.FormValue("grades"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	run, err := h.Worksheets.Generate(r.Context(), pipeline.Request{
		Image:   img,
		Grades:  grades,
		Subject: r.FormValue("subject"),
	}, nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRunDTO(run))
}

// readUpload returns nil image data as pipeline.ErrNoImage so validation
// stays in one place.
func readUpload(r *http.Request) (*domain.UploadedImage, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, pipeline.ErrNoImage
	}
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return nil, pipeline.ErrNoImage
	}
	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = http.DetectContentType(data)
	}
	return &domain.UploadedImage{Name: header.Filename, MediaType: mediaType, Data: data}, nil
}

func (h *handlers) lookupRun(w http.ResponseWriter, r *http.Request) (*pipeline.Run, bool) {
	id := chi.URLParam(r, "runID")
	run, ok := h.Worksheets.GetRun(id)
	if !ok {
		h.fail(w, r, fmt.Errorf("worksheet run %s: %w", id, repository.ErrNotFound))
		return nil, false
	}
	return run, true
}

func (h *handlers) getRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toRunDTO(run))
}

func (h *handlers) saveRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	ids, err := h.Worksheets.SaveAll(r.Context(), run, domain.DefaultUserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string][]string{"ids": ids})
}

func (h *handlers) saveRunGrade(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	grade, err := domain.ParseGrade(chi.URLParam(r, "grade"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := h.Worksheets.SaveGrade(r.Context(), run, grade, domain.DefaultUserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// downloadWorksheet serves one grade as text, or as HTML with ?format=html.
func (h *handlers) downloadWorksheet(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	grade, err := domain.ParseGrade(chi.URLParam(r, "grade"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ws, ok := run.Worksheet(grade)
	if !ok {
		h.fail(w, r, fmt.Errorf("grade %d in run %s: %w", int(grade), run.ID, repository.ErrNotFound))
		return
	}

	name := export.Filename(grade, ws.Subject)
	if strings.EqualFold(r.URL.Query().Get("format"), "html") {
		page, err := export.RenderHTML(ws)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		attach(w, "text/html; charset=utf-8", export.HTMLFilename(grade, ws.Subject), page)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteText(&buf, ws); err != nil {
		h.fail(w, r, err)
		return
	}
	attach(w, "text/plain; charset=utf-8", name, buf.Bytes())
}

func attach(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
