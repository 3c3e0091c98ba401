package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"jarvis-backend/internal/models"
)

func TestOllamaChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}

		var req ollamaChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Stream {
			t.Error("Expected stream=false")
		}
		if req.Options.TopP != 0.9 {
			t.Errorf("Expected default top_p 0.9, got %v", req.Options.TopP)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"model":   "mistral",
			"message": map[string]string{"role": "assistant", "content": "Local hello"},
		})
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "mistral")

	result, err := o.Chat(context.Background(), []models.ChatMessage{{Role: models.RoleUser, Content: "Hi"}}, Options{})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if result.Response != "Local hello" {
		t.Errorf("Expected 'Local hello', got %q", result.Response)
	}
	if !result.Local {
		t.Error("Expected local flag set")
	}
}

func TestOllamaChat_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Refuse connections

	o := NewOllama(srv.URL, "mistral")

	_, err := o.Chat(context.Background(), []models.ChatMessage{{Role: models.RoleUser, Content: "Hi"}}, Options{})
	if err == nil {
		t.Fatal("Expected error when server is down")
	}

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Expected *RequestError, got %T", err)
	}
}

func TestOllamaHealth(t *testing.T) {
	t.Run("models available", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/tags" {
				t.Errorf("Unexpected path %q", r.URL.Path)
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"models": []map[string]string{{"name": "mistral"}, {"name": "llama3"}},
			})
		}))
		defer srv.Close()

		status := NewOllama(srv.URL, "mistral").Health(context.Background())
		if !status.Available {
			t.Errorf("Expected available, got %+v", status)
		}
		if len(status.Models) != 2 {
			t.Errorf("Expected 2 models, got %v", status.Models)
		}
	})

	t.Run("no models pulled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"models": []interface{}{}})
		}))
		defer srv.Close()

		status := NewOllama(srv.URL, "mistral").Health(context.Background())
		if status.Available {
			t.Error("Expected unavailable with no models")
		}
	})

	t.Run("daemon not running", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		status := NewOllama(srv.URL, "mistral").Health(context.Background())
		if status.Available {
			t.Error("Expected unavailable when daemon is unreachable")
		}
		if status.Reason == "" {
			t.Error("Expected a reason for unavailability")
		}
	})
}
