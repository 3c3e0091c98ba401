package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"jarvis-backend/internal/handlers"
	"jarvis-backend/internal/middleware"
	"jarvis-backend/internal/websocket"
)

func New(
	aiHandler *handlers.AIHandler,
	voiceHandler *handlers.VoiceHandler,
	wsHub *websocket.Hub,
	configuredServices map[string]bool,
	storagePath string,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// AI rate limiter (60 req/min per IP)
	aiLimiter := middleware.NewRateLimiter(60, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"services":  configuredServices,
		})
	})

	// ──── AI Routes ────
	r.Route("/api/ai", func(r chi.Router) {
		r.Use(aiLimiter.Middleware)
		r.Post("/chat", aiHandler.Chat)
		r.Post("/summarize", aiHandler.Summarize)
		r.Post("/generate-image", aiHandler.GenerateImage)
		r.Get("/history/{sessionID}", aiHandler.GetHistory)
		r.Delete("/history/{sessionID}", aiHandler.DeleteHistory)
		r.Get("/services", aiHandler.Services)
		r.Put("/priority", aiHandler.SetPriority)
	})

	// ──── Voice Routes ────
	r.Route("/api/voice", func(r chi.Router) {
		r.Post("/tts", voiceHandler.TTS)
		r.Post("/analyze-audio", voiceHandler.AnalyzeAudio)
		r.Get("/voices", voiceHandler.Voices)
	})

	// ──── WebSocket ────
	r.Get("/ws", wsHub.HandleWebSocket)

	// ──── Synthesized audio ────
	r.Handle("/audio/*", http.StripPrefix("/audio/", http.FileServer(http.Dir(storagePath))))

	return r
}
