package server

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/export"
	"github.com/sahayak-edu/sahayak/internal/importer"
)

func (h *handlers) searchLibrary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.Library.Search(r.Context(), domain.DefaultUserID, q.Get("q"), q.Get("type"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]itemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toItemDTO(item))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) saveItem(w http.ResponseWriter, r *http.Request) {
	var req saveItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	item := &domain.LibraryItem{
		Type:     domain.ItemType(req.Type),
		Title:    req.Title,
		Content:  req.Content,
		Metadata: req.Metadata,
		UserID:   domain.DefaultUserID,
	}
	if _, err := h.Library.Save(r.Context(), item); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemDTO(item))
}

func (h *handlers) libraryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Library.Stats(r.Context(), domain.DefaultUserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsDTO(stats))
}

func (h *handlers) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.Library.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(item))
}

func (h *handlers) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Library.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) downloadItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.Library.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	buf.WriteString(item.Content)
	attach(w, "text/plain; charset=utf-8", export.LibraryFilename(item.Title), buf.Bytes())
}

func (h *handlers) exportLibrary(w http.ResponseWriter, r *http.Request) {
	archive, err := h.Import.ExportLibrary(r.Context(), domain.DefaultUserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, archive)
}

func (h *handlers) importLibrary(w http.ResponseWriter, r *http.Request) {
	var archive importer.Archive
	if err := decodeJSON(r, &archive); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	result, err := h.Import.ImportArchive(r.Context(), &archive, domain.DefaultUserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toImportDTO(result))
}
