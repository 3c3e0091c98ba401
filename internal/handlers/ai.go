package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"jarvis-backend/internal/models"
	"jarvis-backend/internal/orchestrator"
	"jarvis-backend/internal/services"
	"jarvis-backend/internal/session"
	"jarvis-backend/internal/websocket"
)

type AIHandler struct {
	assistant *services.Assistant
	sessions  *session.Store
	orch      *orchestrator.Orchestrator
	cohere    *services.CohereService
	hf        *services.HuggingFaceService
	hub       *websocket.Hub
}

func NewAIHandler(
	assistant *services.Assistant,
	sessions *session.Store,
	orch *orchestrator.Orchestrator,
	cohere *services.CohereService,
	hf *services.HuggingFaceService,
	hub *websocket.Hub,
) *AIHandler {
	return &AIHandler{
		assistant: assistant,
		sessions:  sessions,
		orch:      orch,
		cohere:    cohere,
		hf:        hf,
		hub:       hub,
	}
}

func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	resp, err := h.assistant.Chat(r.Context(), req.SessionID, req.Message, req.Enhance)
	if err != nil {
		var allErr *orchestrator.AllUnavailableError
		if errors.As(err, &allErr) {
			writeErrorDetails(w, http.StatusInternalServerError, "Failed to process chat message", allErr.Detail())
			return
		}
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to process chat message", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AIHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req models.SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	summary, err := h.cohere.Summarize(r.Context(), req.Text, req.Length)
	if err != nil {
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to summarize text", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, models.SummarizeResponse{
		Summary:        summary,
		OriginalLength: utf8.RuneCountInString(req.Text),
		SummaryLength:  utf8.RuneCountInString(summary),
		Timestamp:      time.Now().UTC(),
	})
}

func (h *AIHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req models.ImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	image, err := h.hf.GenerateImage(r.Context(), req.Prompt)
	if err != nil {
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to generate image", err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(image)
}

func (h *AIHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	history := h.sessions.Get(sessionID)
	writeJSON(w, http.StatusOK, models.HistoryResponse{
		SessionID:    sessionID,
		History:      history,
		MessageCount: len(history),
	})
}

func (h *AIHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.sessions.Delete(sessionID); err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "History cleared",
		"sessionId": sessionID,
	})
}

// Services runs a health fan-out over every registered backend.
func (h *AIHandler) Services(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.orch.CheckAll(r.Context()))
}

// SetPriority replaces the fallback order used by subsequent chat calls.
func (h *AIHandler) SetPriority(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Priority []string `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Priority list is required")
		return
	}
	if len(req.Priority) == 0 {
		writeError(w, http.StatusBadRequest, "Priority list is required")
		return
	}
	for _, name := range req.Priority {
		if !h.orch.Registered(name) {
			writeError(w, http.StatusBadRequest, "Unknown backend: "+name)
			return
		}
	}

	h.orch.SetPriority(req.Priority)

	// Connected avatar clients show the active backend order.
	h.hub.Broadcast(map[string]interface{}{
		"event":    "priority",
		"priority": h.orch.Priority(),
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Priority updated",
		"priority": h.orch.Priority(),
	})
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}

func writeErrorDetails(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, models.ErrorResponse{Error: message, Details: details})
}
