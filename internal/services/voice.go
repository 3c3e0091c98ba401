package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"jarvis-backend/internal/models"
)

// Seconds of speech estimated per word for lip-sync timing.
const secondsPerWord = 0.5

// VoiceService synthesizes speech to files under the storage path and
// produces the stateless word→viseme mapping for avatar lip-sync.
type VoiceService struct {
	hf          *HuggingFaceService
	storagePath string
}

func NewVoiceService(hf *HuggingFaceService, storagePath string) *VoiceService {
	return &VoiceService{hf: hf, storagePath: storagePath}
}

// Synthesize converts text to an audio file served under /audio/. When no
// TTS backend is configured the client is told to use browser synthesis.
func (v *VoiceService) Synthesize(ctx context.Context, text string) (*models.TTSResponse, error) {
	if !v.hf.Configured() {
		return &models.TTSResponse{
			Text:          text,
			UseBrowserTTS: true,
			Voice:         &models.VoiceHint{Lang: "en-IN", Name: "Google हिन्दी"},
			Timestamp:     time.Now().UTC(),
		}, nil
	}

	audio, err := v.hf.TextToSpeech(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(v.storagePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}

	filename := fmt.Sprintf("speech_%s.wav", uuid.NewString())
	if err := os.WriteFile(filepath.Join(v.storagePath, filename), audio, 0o644); err != nil {
		return nil, fmt.Errorf("failed to save audio file: %w", err)
	}

	return &models.TTSResponse{
		AudioURL:  "/audio/" + filename,
		Duration:  float64(len(text)) * 0.1, // Rough estimate
		Timestamp: time.Now().UTC(),
	}, nil
}

// LipSync maps text onto per-word phoneme timing for the avatar mouth.
func (v *VoiceService) LipSync(text string) *models.LipSyncResponse {
	words := strings.Fields(text)

	phonemeData := make([]models.WordPhonemes, len(words))
	for i, word := range words {
		phonemeData[i] = models.WordPhonemes{
			Word:      word,
			StartTime: float64(i) * secondsPerWord,
			EndTime:   float64(i+1) * secondsPerWord,
			Phonemes:  wordPhonemes(word),
		}
	}

	return &models.LipSyncResponse{
		PhonemeData:   phonemeData,
		TotalDuration: float64(len(words)) * secondsPerWord,
		Timestamp:     time.Now().UTC(),
	}
}

var consonantShapes = map[rune]string{
	'p': "P", 'b': "P", 'm': "M",
	'f': "F", 'v': "F",
	's': "S", 'z': "S",
	'l': "L",
	'r': "R",
	'w': "W",
}

func wordPhonemes(word string) []models.Phoneme {
	var phonemes []models.Phoneme
	for _, r := range strings.ToLower(word) {
		switch {
		case strings.ContainsRune("aeiou", r):
			phonemes = append(phonemes, models.Phoneme{Type: "vowel", Shape: "A"})
		case consonantShapes[r] != "":
			phonemes = append(phonemes, models.Phoneme{Type: "consonant", Shape: consonantShapes[r]})
		default:
			phonemes = append(phonemes, models.Phoneme{Type: "consonant", Shape: "neutral"})
		}
	}
	return phonemes
}

// Voices lists the synthesis voices the front-end may request.
func (v *VoiceService) Voices() []models.Voice {
	return []models.Voice{
		{Name: "en-IN-Wavenet-A", Language: "en-IN", Gender: "FEMALE", Description: "Indian English Female (Wavenet)"},
		{Name: "en-IN-Wavenet-D", Language: "en-IN", Gender: "FEMALE", Description: "Indian English Female (Wavenet) - Alternative"},
		{Name: "en-IN-Standard-A", Language: "en-IN", Gender: "FEMALE", Description: "Indian English Female (Standard)"},
		{Name: "hi-IN-Wavenet-A", Language: "hi-IN", Gender: "FEMALE", Description: "Hindi Female (Wavenet)"},
	}
}
