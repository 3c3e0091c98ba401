package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jarvis-backend/internal/backend"
	"jarvis-backend/internal/config"
	"jarvis-backend/internal/handlers"
	"jarvis-backend/internal/orchestrator"
	"jarvis-backend/internal/router"
	"jarvis-backend/internal/services"
	"jarvis-backend/internal/session"
	"jarvis-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting Jarvis Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Backend Adapters ────
	ctx := context.Background()

	gemini, err := backend.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer gemini.Close()

	adapters := []backend.Adapter{
		backend.NewGroq(cfg.GroqAPIKey, cfg.GroqModel),
		backend.NewGrok(cfg.GrokAPIKey, cfg.GrokBaseURL, cfg.GrokModel),
		gemini,
		backend.NewOllama(cfg.OllamaBaseURL, cfg.OllamaModel),
	}
	log.Printf("✓ Backend adapters registered (%d)", len(adapters))

	// ──── Step 3: Initialize Orchestrator ────
	orch := orchestrator.New(
		cfg.ServicePriority,
		time.Duration(cfg.BackendTimeoutSecs)*time.Second,
		adapters...,
	)
	log.Printf("✓ Orchestrator ready (priority: %v)", cfg.ServicePriority)

	// ──── Step 4: Initialize Services ────
	sessions := session.NewStore()
	hfService := services.NewHuggingFaceService(cfg.HuggingFaceAPIKey)
	cohereService := services.NewCohereService(cfg.CohereAPIKey, cfg.CohereBaseURL)
	assistant := services.NewAssistant(orch, sessions, hfService, cohereService, cfg.AssistantUser)
	voiceService := services.NewVoiceService(hfService, cfg.StoragePath)

	// ──── Step 5: Start WebSocket Hub ────
	wsHub := websocket.NewHub()
	log.Println("✓ WebSocket hub started")

	// ──── Step 6: Initialize Handlers ────
	aiHandler := handlers.NewAIHandler(assistant, sessions, orch, cohereService, hfService, wsHub)
	voiceHandler := handlers.NewVoiceHandler(voiceService)

	// ──── Step 7: Start HTTP Server ────
	configuredServices := map[string]bool{
		"groq":        cfg.GroqAPIKey != "",
		"grok":        cfg.GrokAPIKey != "",
		"gemini":      cfg.GeminiAPIKey != "",
		"ollama":      true, // Local daemon, probed at request time
		"huggingface": cfg.HuggingFaceAPIKey != "",
		"cohere":      cfg.CohereAPIKey != "",
	}

	r := router.New(
		aiHandler,
		voiceHandler,
		wsHub,
		configuredServices,
		cfg.StoragePath,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // Fallback chains can be slow
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("✓ Jarvis Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/ai", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
