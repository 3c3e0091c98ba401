package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"jarvis-backend/internal/models"
)

// Ollama talks to a locally hosted inference server. It needs no
// credential; availability is purely whether the daemon answers.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllama(baseURL, model string) *Ollama {
	return &Ollama{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (o *Ollama) Name() string { return "ollama" }

type ollamaChatRequest struct {
	Model    string               `json:"model"`
	Messages []models.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
	Options  ollamaOptions        `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaChatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

func (o *Ollama) Chat(ctx context.Context, messages []models.ChatMessage, opts Options) (*Result, error) {
	body := ollamaChatRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   false,
		Options: ollamaOptions{
			Temperature: 0.7,
			TopP:        0.9,
			NumPredict:  1024,
		},
	}
	if opts.Model != "" {
		body.Model = opts.Model
	}
	if opts.Temperature != 0 {
		body.Options.Temperature = opts.Temperature
	}
	if opts.TopP != 0 {
		body.Options.TopP = opts.TopP
	}
	if opts.MaxTokens != 0 {
		body.Options.NumPredict = opts.MaxTokens
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, &RequestError{Service: "ollama", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(jsonData))
	if err != nil {
		return nil, &RequestError{Service: "ollama", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, &RequestError{Service: "ollama", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{Service: "ollama", Err: fmt.Errorf("API error: %s", resp.Status)}
	}

	var out ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &RequestError{Service: "ollama", Err: fmt.Errorf("malformed response: %w", err)}
	}

	return &Result{
		Response: out.Message.Content,
		Model:    out.Model,
		Service:  "ollama",
		Local:    true,
	}, nil
}

func (o *Ollama) Health(ctx context.Context) Status {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return Status{Available: false, Reason: err.Error()}
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return Status{Available: false, Reason: "Ollama not installed or not running"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Status{Available: false, Reason: "Ollama not running"}
	}

	var out struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Status{Available: false, Reason: "malformed tags response"}
	}

	names := make([]string, len(out.Models))
	for i, m := range out.Models {
		names[i] = m.Name
	}

	return Status{
		Available: len(names) > 0,
		Models:    names,
		Service:   "ollama",
		Local:     true,
	}
}
