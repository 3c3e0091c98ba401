package models

import "time"

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	Enhance   bool   `json:"enhance"`
}

// Intent is the classification of a user query, used by the front-end to
// decide how the avatar should react.
type Intent struct {
	Type       string   `json:"type"` // general | realtime | automation | image
	Confidence float64  `json:"confidence"`
	Keywords   []string `json:"keywords"`
}

// Sentiment is a label+score pair driving avatar expression selection.
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ChatResponse is the enriched reply from the assistant.
type ChatResponse struct {
	Response  string    `json:"response"`
	Intent    Intent    `json:"intent"`
	Sentiment Sentiment `json:"sentiment"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryResponse is the payload for GET /api/ai/history/{sessionId}.
type HistoryResponse struct {
	SessionID    string        `json:"sessionId"`
	History      []ChatMessage `json:"history"`
	MessageCount int           `json:"messageCount"`
}
