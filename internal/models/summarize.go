package models

import "time"

// SummarizeRequest is the payload sent to the summarize endpoint.
type SummarizeRequest struct {
	Text   string `json:"text"`
	Length string `json:"length"` // short | medium | long
}

// SummarizeResponse reports the summary with length accounting.
type SummarizeResponse struct {
	Summary        string    `json:"summary"`
	OriginalLength int       `json:"originalLength"`
	SummaryLength  int       `json:"summaryLength"`
	Timestamp      time.Time `json:"timestamp"`
}

// ImageRequest is the payload sent to the image generation endpoint.
type ImageRequest struct {
	Prompt string `json:"prompt"`
}
