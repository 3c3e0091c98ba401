package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const cohereAPIURL = "https://api.cohere.ai/v1"

// CohereService provides best-effort text enhancement and summarization.
type CohereService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewCohereService(apiKey, baseURL string) *CohereService {
	if baseURL == "" {
		baseURL = cohereAPIURL
	}
	return &CohereService{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *CohereService) Configured() bool {
	return c.apiKey != ""
}

func (c *CohereService) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	if !c.Configured() {
		return fmt.Errorf("Cohere API key not configured")
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Cohere API error: %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// Enhance rewrites text for clarity and grammar. Callers keep the
// original text when it fails.
func (c *CohereService) Enhance(ctx context.Context, text string) (string, error) {
	payload := map[string]interface{}{
		"model":       "command",
		"prompt":      fmt.Sprintf("Improve the following text for clarity and grammar while maintaining its meaning:\n\n%s\n\nImproved version:", text),
		"max_tokens":  300,
		"temperature": 0.3,
	}

	var out struct {
		Generations []struct {
			Text string `json:"text"`
		} `json:"generations"`
	}
	if err := c.post(ctx, "/generate", payload, &out); err != nil {
		return "", err
	}

	if len(out.Generations) == 0 {
		return "", fmt.Errorf("no generations in response")
	}
	improved := strings.TrimSpace(out.Generations[0].Text)
	if improved == "" {
		return "", fmt.Errorf("empty enhancement")
	}
	return improved, nil
}

// Summarize condenses text to the requested length (short, medium, long).
func (c *CohereService) Summarize(ctx context.Context, text, length string) (string, error) {
	switch length {
	case "short", "medium", "long":
	default:
		length = "medium"
	}

	payload := map[string]interface{}{
		"text":           text,
		"length":         length,
		"format":         "paragraph",
		"model":          "command",
		"extractiveness": "medium",
		"temperature":    0.3,
	}

	var out struct {
		Summary string `json:"summary"`
	}
	if err := c.post(ctx, "/summarize", payload, &out); err != nil {
		return "", err
	}

	if out.Summary == "" {
		return "", fmt.Errorf("empty summary")
	}
	return out.Summary, nil
}
