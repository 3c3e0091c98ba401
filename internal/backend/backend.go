package backend

import (
	"context"
	"fmt"

	"jarvis-backend/internal/models"
)

// Adapter is the uniform capability contract over one AI vendor. The
// orchestrator depends only on this interface, never on vendor error
// shapes.
type Adapter interface {
	// Name returns the unique backend key used in priority lists.
	Name() string

	// Chat sends the ordered conversation to the backend. It fails with
	// *UnavailableError when the backend is not configured (checked before
	// any network I/O) and *RequestError on transport or upstream errors.
	// It never substitutes a default value on failure.
	Chat(ctx context.Context, messages []models.ChatMessage, opts Options) (*Result, error)

	// Health performs a low-cost probe. It never fails; probe errors are
	// folded into the returned Status.
	Health(ctx context.Context) Status
}

// Options carries per-call sampling overrides. Zero values mean "use the
// adapter default".
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	TopP        float64

	// JSONObject asks for a JSON object response where the backend
	// supports a structured-output mode.
	JSONObject bool
}

// Usage is token accounting as reported by the upstream, when available.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Result is a successful chat completion.
type Result struct {
	Response string `json:"response"`
	Model    string `json:"model"`
	Service  string `json:"service"`
	Usage    *Usage `json:"usage,omitempty"`
	Local    bool   `json:"local,omitempty"`
}

// Status is the outcome of a health probe.
type Status struct {
	Available bool     `json:"available"`
	Service   string   `json:"service,omitempty"`
	Model     string   `json:"model,omitempty"`
	Models    []string `json:"models,omitempty"`
	Local     bool     `json:"local,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}

// UnavailableError reports an unmet local precondition, typically a
// missing credential. The orchestrator recovers it by trying the next
// backend.
type UnavailableError struct {
	Service string
	Reason  string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s", e.Service, e.Reason)
}

// RequestError reports a transport-level or upstream-reported failure.
type RequestError struct {
	Service string
	Err     error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }
