package server

import (
	"fmt"
	"time"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/pipeline"
	"github.com/sahayak-edu/sahayak/internal/service"
)

type gradeDTO struct {
	Grade int    `json:"grade"`
	Label string `json:"label"`
	Band  string `json:"band"`
}

type worksheetDTO struct {
	Grade       int    `json:"grade"`
	Title       string `json:"title"`
	Subject     string `json:"subject"`
	Content     string `json:"content"`
	Source      string `json:"source"`
	DownloadURL string `json:"downloadUrl"`
}

type runDTO struct {
	ID            string         `json:"id"`
	State         string         `json:"state"`
	Progress      int            `json:"progress"`
	Subject       string         `json:"subject"`
	Grades        []int          `json:"grades"`
	ImageName     string         `json:"imageName"`
	ExtractedText string         `json:"extractedText,omitempty"`
	Worksheets    []worksheetDTO `json:"worksheets"`
	Fallbacks     int            `json:"fallbacks"`
	StartedAt     time.Time      `json:"startedAt"`
	FinishedAt    *time.Time     `json:"finishedAt,omitempty"`
	Error         string         `json:"error,omitempty"`
}

func toRunDTO(run *pipeline.Run) runDTO {
	out := runDTO{
		ID:            run.ID,
		State:         string(run.State()),
		Progress:      run.Progress(),
		Subject:       run.Subject,
		ImageName:     run.ImageName,
		ExtractedText: run.ExtractedText(),
		Worksheets:    []worksheetDTO{},
		Fallbacks:     run.FallbackCount(),
		StartedAt:     run.StartedAt,
	}
	for _, g := range run.Grades.Sorted() {
		out.Grades = append(out.Grades, int(g))
	}
	for _, ws := range run.Worksheets() {
		out.Worksheets = append(out.Worksheets, worksheetDTO{
			Grade:       int(ws.Grade),
			Title:       ws.Title,
			Subject:     ws.Subject,
			Content:     ws.Content,
			Source:      string(ws.Source),
			DownloadURL: fmt.Sprintf("/api/worksheets/%s/%d/download", run.ID, int(ws.Grade)),
		})
	}
	if t := run.FinishedAt(); !t.IsZero() {
		out.FinishedAt = &t
	}
	if err := run.Err(); err != nil {
		out.Error = err.Error()
	}
	return out
}

type itemDTO struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"createdAt"`
	UserID    string            `json:"userId"`
}

func toItemDTO(item *domain.LibraryItem) itemDTO {
	meta := item.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	return itemDTO{
		ID:        item.ID,
		Type:      string(item.Type),
		Title:     item.Title,
		Content:   item.Content,
		Metadata:  meta,
		CreatedAt: item.CreatedAt,
		UserID:    item.UserID,
	}
}

type saveItemRequest struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

type statsDTO struct {
	Total    int            `json:"total"`
	ByType   map[string]int `json:"byType"`
	ThisWeek map[string]int `json:"thisWeek"`
}

func toStatsDTO(s domain.LibraryStats) statsDTO {
	out := statsDTO{Total: s.Total, ByType: map[string]int{}, ThisWeek: map[string]int{}}
	for t, n := range s.ByType {
		out.ByType[string(t)] = n
	}
	for t, n := range s.ThisWeek {
		out.ThisWeek[string(t)] = n
	}
	return out
}

type importDTO struct {
	Imported int            `json:"imported"`
	ByType   map[string]int `json:"byType"`
}

func toImportDTO(r *service.ImportResult) importDTO {
	out := importDTO{Imported: r.Imported, ByType: map[string]int{}}
	for t, n := range r.ByType {
		out.ByType[string(t)] = n
	}
	return out
}

type storyRequest struct {
	Topic    string `json:"topic"`
	Language string `json:"language"`
	Save     bool   `json:"save"`
}

type storyResponse struct {
	Topic    string `json:"topic"`
	Language string `json:"language"`
	Story    string `json:"story"`
	SavedID  string `json:"savedId,omitempty"`
}

type chatMessageDTO struct {
	ID        string    `json:"id,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type assistantRequest struct {
	History  []chatMessageDTO `json:"history"`
	Question string           `json:"question"`
}

type assistantResponse struct {
	Message chatMessageDTO `json:"message"`
	Error   string         `json:"error,omitempty"`
}

func fromChatDTOs(in []chatMessageDTO) []domain.ChatMessage {
	out := make([]domain.ChatMessage, 0, len(in))
	for _, m := range in {
		out = append(out, domain.ChatMessage{ID: m.ID, Role: domain.ChatRole(m.Role), Content: m.Content, Timestamp: m.Timestamp})
	}
	return out
}

func toChatDTO(m domain.ChatMessage) chatMessageDTO {
	return chatMessageDTO{ID: m.ID, Role: string(m.Role), Content: m.Content, Timestamp: m.Timestamp}
}

type visualAidRequest struct {
	Topic string `json:"topic"`
	Type  string `json:"type"`
	Save  bool   `json:"save"`
}

type visualAidResponse struct {
	Topic       string `json:"topic"`
	Type        string `json:"type"`
	Label       string `json:"label"`
	ImagePrompt string `json:"imagePrompt"`
	ImageURL    string `json:"imageUrl"`
	SavedID     string `json:"savedId,omitempty"`
}

type readingRequest struct {
	Transcript string `json:"transcript"`
	Language   string `json:"language"`
	Save       bool   `json:"save"`
}

type readingResponse struct {
	*domain.ReadingAssessment
	Fallback bool   `json:"fallback"`
	SavedID  string `json:"savedId,omitempty"`
}
