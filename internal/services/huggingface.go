package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jarvis-backend/internal/models"
)

const (
	hfAPIURL = "https://router.huggingface.co/models"

	hfSentimentModel = "distilbert-base-uncased-finetuned-sst-2-english"
	hfImageModel     = "stabilityai/stable-diffusion-xl-base-1.0"
	hfTTSModel       = "facebook/fastspeech2-en-ljspeech"
)

// HuggingFaceService covers the auxiliary inference capabilities:
// sentiment scoring, image generation and speech synthesis.
type HuggingFaceService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewHuggingFaceService(apiKey string) *HuggingFaceService {
	return &HuggingFaceService{
		apiKey:  apiKey,
		baseURL: hfAPIURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (h *HuggingFaceService) Configured() bool {
	return h.apiKey != ""
}

func (h *HuggingFaceService) post(ctx context.Context, model string, payload interface{}) ([]byte, error) {
	if !h.Configured() {
		return nil, fmt.Errorf("Hugging Face API key not configured")
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/"+model, bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+h.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Hugging Face API error: %s", resp.Status)
	}

	return data, nil
}

// AnalyzeSentiment classifies text into a label+score pair. The caller is
// expected to fall back to a neutral default on error.
func (h *HuggingFaceService) AnalyzeSentiment(ctx context.Context, text string) (models.Sentiment, error) {
	data, err := h.post(ctx, hfSentimentModel, map[string]string{"inputs": text})
	if err != nil {
		return models.Sentiment{}, err
	}

	// The inference API wraps classification output in a nested array;
	// accept the flat shape too.
	var nested [][]models.Sentiment
	if err := json.Unmarshal(data, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return topSentiment(nested[0]), nil
	}

	var flat []models.Sentiment
	if err := json.Unmarshal(data, &flat); err == nil && len(flat) > 0 {
		return topSentiment(flat), nil
	}

	return models.Sentiment{}, fmt.Errorf("unexpected sentiment response shape")
}

func topSentiment(candidates []models.Sentiment) models.Sentiment {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return best
}

// GenerateImage renders a prompt into raw PNG bytes.
func (h *HuggingFaceService) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	data, err := h.post(ctx, hfImageModel, map[string]string{"inputs": prompt})
	if err != nil {
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}
	return data, nil
}

// TextToSpeech synthesizes speech audio for the given text.
func (h *HuggingFaceService) TextToSpeech(ctx context.Context, text string) ([]byte, error) {
	data, err := h.post(ctx, hfTTSModel, map[string]string{"inputs": text})
	if err != nil {
		return nil, fmt.Errorf("failed to generate speech: %w", err)
	}
	return data, nil
}
