package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"jarvis-backend/internal/models"
)

const groqAPIURL = "https://api.groq.com/openai/v1"

// Groq and Grok both speak the OpenAI chat-completions dialect, so a
// single implementation serves both vendors.
type openAIAdapter struct {
	name    string
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewGroq returns the fast hosted inference adapter.
func NewGroq(apiKey, model string) Adapter {
	return newOpenAI("groq", groqAPIURL, apiKey, model)
}

// NewGrok returns the x.ai adapter.
func NewGrok(apiKey, baseURL, model string) Adapter {
	return newOpenAI("grok", baseURL, apiKey, model)
}

func newOpenAI(name, baseURL, apiKey, model string) *openAIAdapter {
	return &openAIAdapter{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (a *openAIAdapter) Name() string { return a.name }

type openAIChatRequest struct {
	Model          string               `json:"model"`
	Messages       []models.ChatMessage `json:"messages"`
	Temperature    float64              `json:"temperature"`
	MaxTokens      int                  `json:"max_tokens"`
	TopP           float64              `json:"top_p"`
	Stream         bool                 `json:"stream"`
	ResponseFormat *responseFormat      `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type openAIChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

type openAIErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *openAIAdapter) Chat(ctx context.Context, messages []models.ChatMessage, opts Options) (*Result, error) {
	if a.apiKey == "" {
		return nil, &UnavailableError{Service: a.name, Reason: "API key not configured"}
	}

	body := openAIChatRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   1024,
		TopP:        1,
		Stream:      false,
	}
	if opts.Model != "" {
		body.Model = opts.Model
	}
	if opts.Temperature != 0 {
		body.Temperature = opts.Temperature
	}
	if opts.MaxTokens != 0 {
		body.MaxTokens = opts.MaxTokens
	}
	if opts.TopP != 0 {
		body.TopP = opts.TopP
	}
	if opts.JSONObject {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, &RequestError{Service: a.name, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, &RequestError{Service: a.name, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &RequestError{Service: a.name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr openAIErrorResponse
		json.NewDecoder(resp.Body).Decode(&apiErr)
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.Status
		}
		return nil, &RequestError{Service: a.name, Err: fmt.Errorf("API error: %s", msg)}
	}

	var out openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &RequestError{Service: a.name, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if len(out.Choices) == 0 {
		return nil, &RequestError{Service: a.name, Err: errors.New("no choices in response")}
	}

	return &Result{
		Response: out.Choices[0].Message.Content,
		Model:    out.Model,
		Service:  a.name,
		Usage:    out.Usage,
	}, nil
}

func (a *openAIAdapter) Health(ctx context.Context) Status {
	if a.apiKey == "" {
		return Status{Available: false, Reason: "API key not configured"}
	}

	// Minimal chat call with a tiny token budget.
	_, err := a.Chat(ctx, []models.ChatMessage{{Role: models.RoleUser, Content: "Hi"}}, Options{MaxTokens: 10})
	if err != nil {
		return Status{Available: false, Reason: err.Error()}
	}

	return Status{Available: true, Service: a.name, Model: a.model}
}
