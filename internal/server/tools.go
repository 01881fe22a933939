package server

import (
	"net/http"
	"strings"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/intelligence"
)

func (h *handlers) generateStory(w http.ResponseWriter, r *http.Request) {
	var req storyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	story, err := h.Stories.Generate(r.Context(), req.Topic, req.Language)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := storyResponse{Topic: req.Topic, Language: req.Language, Story: story}
	if req.Save {
		id, err := h.Library.Save(r.Context(), intelligence.StoryItem(req.Topic, req.Language, story))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		resp.SavedID = id
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) askAssistant(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	msg, err := h.Assistant.Ask(r.Context(), fromChatDTOs(req.History), req.Question)
	if err != nil {
		// The apology message still goes back so clients can show it inline.
		writeJSON(w, statusFor(err), assistantResponse{Message: toChatDTO(msg), Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, assistantResponse{Message: toChatDTO(msg)})
}

func (h *handlers) generateVisualAid(w http.ResponseWriter, r *http.Request) {
	var req visualAidRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	aid, err := h.VisualAids.Generate(r.Context(), req.Topic, req.Type)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := visualAidResponse{
		Topic:       aid.Topic,
		Type:        aid.Type.Value,
		Label:       aid.Type.Label,
		ImagePrompt: aid.ImagePrompt,
		ImageURL:    aid.ImageURL,
	}
	if req.Save {
		id, err := h.Library.Save(r.Context(), intelligence.VisualAidItem(aid))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		resp.SavedID = id
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) analyzeReading(w http.ResponseWriter, r *http.Request) {
	var req readingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	transcript := domain.CoalesceStr(strings.TrimSpace(req.Transcript), intelligence.SimulatedTranscript(req.Language))
	assessment, err := h.Reading.Analyze(r.Context(), transcript, req.Language)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := readingResponse{ReadingAssessment: assessment, Fallback: assessment.Fallback}
	if req.Save {
		item, err := intelligence.ReadingItem(assessment)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		id, err := h.Library.Save(r.Context(), item)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		resp.SavedID = id
	}
	writeJSON(w, http.StatusOK, resp)
}
