package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"jarvis-backend/internal/models"
	"jarvis-backend/internal/services"
)

type VoiceHandler struct {
	voice *services.VoiceService
}

func NewVoiceHandler(voice *services.VoiceService) *VoiceHandler {
	return &VoiceHandler{voice: voice}
}

func (h *VoiceHandler) TTS(w http.ResponseWriter, r *http.Request) {
	var req models.TTSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	resp, err := h.voice.Synthesize(r.Context(), req.Text)
	if err != nil {
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to generate speech", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *VoiceHandler) AnalyzeAudio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	writeJSON(w, http.StatusOK, h.voice.LipSync(req.Text))
}

func (h *VoiceHandler) Voices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"voices": h.voice.Voices(),
	})
}
