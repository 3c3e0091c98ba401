package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"jarvis-backend/internal/backend"
	"jarvis-backend/internal/models"
	"jarvis-backend/internal/orchestrator"
	"jarvis-backend/internal/session"
)

const intentPrompt = `Analyze the user's query and classify it into categories:
- general: General conversation
- realtime: Requires real-time information (weather, news, current events)
- automation: System commands (open, close, play)
- image: Image generation request
Return JSON with: { "type": string, "confidence": number, "keywords": string[] }`

// Assistant runs the enrichment pipeline around the core chat call:
// intent classification, the orchestrated chat completion, optional text
// enhancement and sentiment scoring. Only the chat stage may abort the
// request; every other stage degrades to a neutral default.
type Assistant struct {
	orch     *orchestrator.Orchestrator
	sessions *session.Store
	hf       *HuggingFaceService
	cohere   *CohereService
	user     string
}

func NewAssistant(
	orch *orchestrator.Orchestrator,
	sessions *session.Store,
	hf *HuggingFaceService,
	cohere *CohereService,
	user string,
) *Assistant {
	return &Assistant{
		orch:     orch,
		sessions: sessions,
		hf:       hf,
		cohere:   cohere,
		user:     user,
	}
}

func (a *Assistant) systemPrompt() string {
	return fmt.Sprintf(`You are Jarvis, an intelligent AI assistant. You are helpful, friendly, and professional.
You are speaking to %s. Keep responses concise but informative.
You have a realistic 3D avatar that displays emotions and gestures while speaking.`, a.user)
}

// Chat answers one user message for the given session.
func (a *Assistant) Chat(ctx context.Context, sessionID, message string, enhance bool) (*models.ChatResponse, error) {
	history := a.sessions.Get(sessionID)

	intent := a.AnalyzeIntent(ctx, message)

	messages := make([]models.ChatMessage, 0, len(history)+2)
	messages = append(messages, models.ChatMessage{Role: models.RoleSystem, Content: a.systemPrompt()})
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{Role: models.RoleUser, Content: message})

	result, err := a.orch.GetResponse(ctx, messages, orchestrator.RequestOptions{})
	if err != nil {
		return nil, err
	}
	response := result.Response

	if enhance {
		if improved, err := a.cohere.Enhance(ctx, response); err != nil {
			log.Printf("Enhancement failed, keeping original text: %v", err)
		} else {
			response = improved
		}
	}

	sentiment := models.Sentiment{Label: "NEUTRAL", Score: 0.5}
	if s, err := a.hf.AnalyzeSentiment(ctx, response); err != nil {
		log.Printf("Sentiment analysis failed, using neutral default: %v", err)
	} else {
		sentiment = s
	}

	a.sessions.Append(sessionID,
		models.ChatMessage{Role: models.RoleUser, Content: message},
		models.ChatMessage{Role: models.RoleAssistant, Content: response},
	)

	return &models.ChatResponse{
		Response:  response,
		Intent:    intent,
		Sentiment: sentiment,
		Timestamp: time.Now().UTC(),
	}, nil
}

// AnalyzeIntent classifies a query through a structured-output backend
// call. Any failure yields the neutral default instead of an error.
func (a *Assistant) AnalyzeIntent(ctx context.Context, query string) models.Intent {
	fallback := models.Intent{Type: "general", Confidence: 0.5, Keywords: []string{}}

	messages := []models.ChatMessage{
		{Role: models.RoleSystem, Content: intentPrompt},
		{Role: models.RoleUser, Content: query},
	}

	result, err := a.orch.GetResponse(ctx, messages, orchestrator.RequestOptions{
		Options: backend.Options{Temperature: 0.3, JSONObject: true},
	})
	if err != nil {
		log.Printf("Intent analysis failed: %v", err)
		return fallback
	}

	var intent models.Intent
	if err := json.Unmarshal([]byte(stripCodeFences(result.Response)), &intent); err != nil || intent.Type == "" {
		return fallback
	}
	if intent.Keywords == nil {
		intent.Keywords = []string{}
	}
	return intent
}

// stripCodeFences removes a markdown code fence some models wrap around
// JSON output despite being asked not to.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
