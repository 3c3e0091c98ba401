package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"jarvis-backend/internal/backend"
	"jarvis-backend/internal/models"
	"jarvis-backend/internal/orchestrator"
	"jarvis-backend/internal/services"
	"jarvis-backend/internal/session"
	"jarvis-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	gws "github.com/gorilla/websocket"
)

// stubAdapter answers every chat call with a fixed reply, or fails.
type stubAdapter struct {
	name  string
	reply string
	fail  bool
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Chat(ctx context.Context, messages []models.ChatMessage, opts backend.Options) (*backend.Result, error) {
	if s.fail {
		return nil, &backend.RequestError{Service: s.name, Err: errors.New("stub failure")}
	}
	return &backend.Result{Response: s.reply, Service: s.name}, nil
}

func (s *stubAdapter) Health(ctx context.Context) backend.Status {
	return backend.Status{Available: !s.fail, Service: s.name}
}

type fixture struct {
	router   http.Handler
	sessions *session.Store
	orch     *orchestrator.Orchestrator
	hub      *websocket.Hub
}

func newFixture(adapters ...backend.Adapter) *fixture {
	return newFixtureWithCohere(services.NewCohereService("", ""), adapters...)
}

func newFixtureWithCohere(cohere *services.CohereService, adapters ...backend.Adapter) *fixture {
	names := make([]string, len(adapters))
	for i, a := range adapters {
		names[i] = a.Name()
	}

	orch := orchestrator.New(names, 0, adapters...)
	sessions := session.NewStore()
	hf := services.NewHuggingFaceService("")
	assistant := services.NewAssistant(orch, sessions, hf, cohere, "a tester")

	hub := websocket.NewHub()
	aiHandler := NewAIHandler(assistant, sessions, orch, cohere, hf, hub)

	r := chi.NewRouter()
	r.Get("/ws", hub.HandleWebSocket)
	r.Route("/api/ai", func(r chi.Router) {
		r.Post("/chat", aiHandler.Chat)
		r.Post("/summarize", aiHandler.Summarize)
		r.Post("/generate-image", aiHandler.GenerateImage)
		r.Get("/history/{sessionID}", aiHandler.GetHistory)
		r.Delete("/history/{sessionID}", aiHandler.DeleteHistory)
		r.Get("/services", aiHandler.Services)
		r.Put("/priority", aiHandler.SetPriority)
	})

	return &fixture{router: r, sessions: sessions, orch: orch, hub: hub}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestChat_EndToEnd(t *testing.T) {
	f := newFixture(&stubAdapter{name: "groq", reply: "Hello! How can I help?"})

	rr := f.do(t, http.MethodPost, "/api/ai/chat", `{"message":"Hello"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Response == "" {
		t.Error("Expected non-empty response")
	}
	if resp.Intent.Type == "" {
		t.Error("Expected intent label")
	}
	if resp.Sentiment.Label == "" {
		t.Error("Expected sentiment label")
	}
	if resp.Timestamp.IsZero() {
		t.Error("Expected timestamp")
	}

	// The default session now holds exactly one exchange.
	rr = f.do(t, http.MethodGet, "/api/ai/history/default", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var hist models.HistoryResponse
	if err := json.NewDecoder(rr.Body).Decode(&hist); err != nil {
		t.Fatalf("Failed to decode history: %v", err)
	}
	if hist.MessageCount != 2 {
		t.Errorf("Expected messageCount 2, got %d", hist.MessageCount)
	}
	if hist.SessionID != "default" {
		t.Errorf("Expected sessionId 'default', got %q", hist.SessionID)
	}
}

func TestChat_MissingMessage(t *testing.T) {
	f := newFixture(&stubAdapter{name: "groq", reply: "hi"})

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"empty object", "{}"},
		{"blank message", `{"message":"   "}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := f.do(t, http.MethodPost, "/api/ai/chat", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d", rr.Code)
			}

			var resp models.ErrorResponse
			json.NewDecoder(rr.Body).Decode(&resp)
			if resp.Error != "Message is required" {
				t.Errorf("Expected 'Message is required', got %q", resp.Error)
			}
		})
	}
}

func TestChat_AllBackendsDown(t *testing.T) {
	f := newFixture(
		&stubAdapter{name: "groq", fail: true},
		&stubAdapter{name: "ollama", fail: true},
	)

	rr := f.do(t, http.MethodPost, "/api/ai/chat", `{"message":"Hello"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error != "Failed to process chat message" {
		t.Errorf("Unexpected error %q", resp.Error)
	}
	if !strings.Contains(resp.Details, "groq") || !strings.Contains(resp.Details, "ollama") {
		t.Errorf("Expected per-backend detail, got %q", resp.Details)
	}
}

func TestChat_SessionIsolation(t *testing.T) {
	f := newFixture(&stubAdapter{name: "groq", reply: "ok"})

	f.do(t, http.MethodPost, "/api/ai/chat", `{"message":"one","sessionId":"alice"}`)
	f.do(t, http.MethodPost, "/api/ai/chat", `{"message":"two","sessionId":"alice"}`)
	f.do(t, http.MethodPost, "/api/ai/chat", `{"message":"three","sessionId":"bob"}`)

	if got := f.sessions.Len("alice"); got != 4 {
		t.Errorf("Expected 4 entries for alice, got %d", got)
	}
	if got := f.sessions.Len("bob"); got != 2 {
		t.Errorf("Expected 2 entries for bob, got %d", got)
	}
}

func TestSummarize_MissingText(t *testing.T) {
	f := newFixture(&stubAdapter{name: "groq", reply: "hi"})

	rr := f.do(t, http.MethodPost, "/api/ai/summarize", "{}")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error != "Text is required" {
		t.Errorf("Expected 'Text is required', got %q", resp.Error)
	}
}

func TestSummarize_CountsCharacters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"summary": "नमस्ते"})
	}))
	defer srv.Close()

	f := newFixtureWithCohere(
		services.NewCohereService("co-key", srv.URL),
		&stubAdapter{name: "groq", reply: "hi"},
	)

	// 13 runes, 37 bytes: counts must be in characters.
	rr := f.do(t, http.MethodPost, "/api/ai/summarize", `{"text":"नमस्ते दुनिया"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.SummarizeResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.OriginalLength != utf8.RuneCountInString("नमस्ते दुनिया") {
		t.Errorf("Expected rune count %d, got %d", utf8.RuneCountInString("नमस्ते दुनिया"), resp.OriginalLength)
	}
	if resp.SummaryLength != utf8.RuneCountInString("नमस्ते") {
		t.Errorf("Expected rune count %d, got %d", utf8.RuneCountInString("नमस्ते"), resp.SummaryLength)
	}
}

func TestSummarize_BackendNotConfigured(t *testing.T) {
	f := newFixture(&stubAdapter{name: "groq", reply: "hi"})

	rr := f.do(t, http.MethodPost, "/api/ai/summarize", `{"text":"a very long text"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500 without Cohere key, got %d", rr.Code)
	}
}

func TestGenerateImage_MissingPrompt(t *testing.T) {
	f := newFixture(&stubAdapter{name: "groq", reply: "hi"})

	rr := f.do(t, http.MethodPost, "/api/ai/generate-image", "{}")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error != "Prompt is required" {
		t.Errorf("Expected 'Prompt is required', got %q", resp.Error)
	}
}

func TestHistory_DeleteUnknownSession(t *testing.T) {
	f := newFixture(&stubAdapter{name: "groq", reply: "hi"})

	rr := f.do(t, http.MethodDelete, "/api/ai/history/ghost", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error != "Session not found" {
		t.Errorf("Expected 'Session not found', got %q", resp.Error)
	}
}

func TestHistory_DeleteAfterChat(t *testing.T) {
	f := newFixture(&stubAdapter{name: "groq", reply: "hi"})

	f.do(t, http.MethodPost, "/api/ai/chat", `{"message":"Hello"}`)

	rr := f.do(t, http.MethodDelete, "/api/ai/history/default", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var resp map[string]string
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp["message"] != "History cleared" || resp["sessionId"] != "default" {
		t.Errorf("Unexpected delete payload %v", resp)
	}
}

func TestServices_HealthFanOut(t *testing.T) {
	f := newFixture(
		&stubAdapter{name: "groq", reply: "hi"},
		&stubAdapter{name: "ollama", fail: true},
	)

	rr := f.do(t, http.MethodGet, "/api/ai/services", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var status map[string]backend.Status
	if err := json.NewDecoder(rr.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}
	if len(status) != 2 {
		t.Fatalf("Expected 2 services, got %d", len(status))
	}
	if !status["groq"].Available || status["ollama"].Available {
		t.Errorf("Unexpected availability: %+v", status)
	}
}

func TestSetPriority(t *testing.T) {
	f := newFixture(
		&stubAdapter{name: "groq", reply: "from groq"},
		&stubAdapter{name: "ollama", reply: "from ollama"},
	)

	t.Run("rejects empty list", func(t *testing.T) {
		rr := f.do(t, http.MethodPut, "/api/ai/priority", `{"priority":[]}`)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", rr.Code)
		}
	})

	t.Run("rejects unknown backend", func(t *testing.T) {
		rr := f.do(t, http.MethodPut, "/api/ai/priority", `{"priority":["skynet"]}`)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", rr.Code)
		}
	})

	t.Run("replaces attempt order", func(t *testing.T) {
		rr := f.do(t, http.MethodPut, "/api/ai/priority", `{"priority":["ollama","groq"]}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rr.Code)
		}
		if got := f.orch.Priority(); got[0] != "ollama" {
			t.Errorf("Expected ollama first, got %v", got)
		}
	})

	t.Run("notifies connected clients", func(t *testing.T) {
		srv := httptest.NewServer(f.router)
		defer srv.Close()

		conn, _, err := gws.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
		if err != nil {
			t.Fatalf("Failed to dial: %v", err)
		}
		defer conn.Close()

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) && f.hub.ClientCount() == 0 {
			time.Sleep(5 * time.Millisecond)
		}

		rr := f.do(t, http.MethodPut, "/api/ai/priority", `{"priority":["groq","ollama"]}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rr.Code)
		}

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var event struct {
			Event    string   `json:"event"`
			Priority []string `json:"priority"`
		}
		if err := conn.ReadJSON(&event); err != nil {
			t.Fatalf("Failed to read priority event: %v", err)
		}
		if event.Event != "priority" || len(event.Priority) != 2 || event.Priority[0] != "groq" {
			t.Errorf("Unexpected priority event: %+v", event)
		}
	})
}
