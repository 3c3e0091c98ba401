package models

import "time"

// TTSRequest is the payload sent to the text-to-speech endpoint.
type TTSRequest struct {
	Text      string `json:"text"`
	Language  string `json:"language"`
	VoiceName string `json:"voiceName"`
}

// TTSResponse points at a synthesized audio file, or instructs the client
// to fall back to browser speech synthesis.
type TTSResponse struct {
	AudioURL      string     `json:"audioUrl,omitempty"`
	Duration      float64    `json:"duration,omitempty"`
	Text          string     `json:"text,omitempty"`
	UseBrowserTTS bool       `json:"useBrowserTTS,omitempty"`
	Voice         *VoiceHint `json:"voice,omitempty"`
	Timestamp     time.Time  `json:"timestamp"`
}

// VoiceHint describes the browser voice to use when falling back.
type VoiceHint struct {
	Lang string `json:"lang"`
	Name string `json:"name"`
}

// Phoneme is one mouth shape within a word.
type Phoneme struct {
	Type  string `json:"type"` // vowel | consonant
	Shape string `json:"shape"`
}

// WordPhonemes carries per-word lip-sync timing.
type WordPhonemes struct {
	Word      string    `json:"word"`
	StartTime float64   `json:"startTime"`
	EndTime   float64   `json:"endTime"`
	Phonemes  []Phoneme `json:"phonemes"`
}

// LipSyncResponse is the payload for the analyze-audio endpoint.
type LipSyncResponse struct {
	PhonemeData   []WordPhonemes `json:"phonemeData"`
	TotalDuration float64        `json:"totalDuration"`
	Timestamp     time.Time      `json:"timestamp"`
}

// Voice describes one available synthesis voice.
type Voice struct {
	Name        string `json:"name"`
	Language    string `json:"language"`
	Gender      string `json:"gender"`
	Description string `json:"description"`
}
