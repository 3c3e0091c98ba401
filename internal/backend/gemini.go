package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"jarvis-backend/internal/models"
)

// Gemini is the vendor-SDK-backed adapter. Without an API key the client
// is never constructed and every chat call reports unavailability.
type Gemini struct {
	model  string
	client *genai.Client
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	g := &Gemini{model: model}
	if apiKey == "" {
		return g, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

func (g *Gemini) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Chat(ctx context.Context, messages []models.ChatMessage, opts Options) (*Result, error) {
	if g.client == nil {
		return nil, &UnavailableError{Service: "gemini", Reason: "API key not configured"}
	}

	modelName := g.model
	if opts.Model != "" {
		modelName = opts.Model
	}

	model := g.client.GenerativeModel(modelName)
	if opts.Temperature != 0 {
		model.SetTemperature(float32(opts.Temperature))
	} else {
		model.SetTemperature(0.7)
	}
	if opts.TopP != 0 {
		model.SetTopP(float32(opts.TopP))
	}
	if opts.MaxTokens != 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	} else {
		model.SetMaxOutputTokens(1024)
	}
	if opts.JSONObject {
		model.ResponseMIMEType = "application/json"
	}

	// System messages become the system instruction; the rest map onto the
	// chat session with the final message as the prompt.
	var system []string
	var convo []models.ChatMessage
	for _, m := range messages {
		if m.Role == models.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		convo = append(convo, m)
	}
	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(strings.Join(system, "\n\n"))},
		}
	}
	if len(convo) == 0 {
		return nil, &RequestError{Service: "gemini", Err: errors.New("no user message to send")}
	}

	cs := model.StartChat()
	for _, m := range convo[:len(convo)-1] {
		role := "user"
		if m.Role == models.RoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(convo[len(convo)-1].Content))
	if err != nil {
		return nil, &RequestError{Service: "gemini", Err: err}
	}

	text := extractText(resp)
	if text == "" {
		return nil, &RequestError{Service: "gemini", Err: errors.New("empty response")}
	}

	result := &Result{
		Response: text,
		Model:    modelName,
		Service:  "gemini",
	}
	if resp.UsageMetadata != nil {
		result.Usage = &Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return result, nil
}

func (g *Gemini) Health(ctx context.Context) Status {
	if g.client == nil {
		return Status{Available: false, Reason: "API key not configured"}
	}

	model := g.client.GenerativeModel(g.model)
	model.SetMaxOutputTokens(10)
	if _, err := model.GenerateContent(ctx, genai.Text("Hi")); err != nil {
		return Status{Available: false, Reason: err.Error()}
	}

	return Status{Available: true, Service: "gemini", Model: g.model}
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
