package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Orchestration
	ServicePriority []string

	// Groq (fast hosted inference)
	GroqAPIKey string
	GroqModel  string

	// Grok / x.ai
	GrokAPIKey  string
	GrokModel   string
	GrokBaseURL string

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	// Ollama (local inference)
	OllamaBaseURL string
	OllamaModel   string

	// Hugging Face (sentiment, image, TTS)
	HuggingFaceAPIKey string

	// Cohere (enhance, summarize)
	CohereAPIKey  string
	CohereBaseURL string

	// Assistant persona
	AssistantUser string

	// Storage for synthesized audio
	StoragePath string

	// Frontend
	FrontendURL string

	// Per-attempt timeout for backend calls, seconds
	BackendTimeoutSecs int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "3000"),
		Env:                getEnvOrDefault("ENV", "development"),
		ServicePriority:    parsePriority(getEnvOrDefault("AI_SERVICE_PRIORITY", "groq,grok,gemini,ollama")),
		GroqAPIKey:         getEnvOrDefault("GROQ_API_KEY", ""),
		GroqModel:          getEnvOrDefault("GROQ_MODEL", "mixtral-8x7b-32768"),
		GrokAPIKey:         getEnvOrDefault("GROK_API_KEY", ""),
		GrokModel:          getEnvOrDefault("GROK_MODEL", "grok-beta"),
		GrokBaseURL:        getEnvOrDefault("GROK_BASE_URL", "https://api.x.ai/v1"),
		GeminiAPIKey:       getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:        getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		OllamaBaseURL:      getEnvOrDefault("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:        getEnvOrDefault("OLLAMA_MODEL", "mistral"),
		HuggingFaceAPIKey:  getEnvOrDefault("HUGGINGFACE_API_KEY", ""),
		CohereAPIKey:       getEnvOrDefault("COHERE_API_KEY", ""),
		CohereBaseURL:      getEnvOrDefault("COHERE_BASE_URL", ""),
		AssistantUser:      getEnvOrDefault("ASSISTANT_USER", "the user"),
		StoragePath:        getEnvOrDefault("STORAGE_PATH", "./audio"),
		FrontendURL:        getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
		BackendTimeoutSecs: getEnvAsIntOrDefault("BACKEND_TIMEOUT_SECONDS", 60),
	}

	return cfg
}

// parsePriority splits a comma-separated backend name list, trimming
// whitespace and dropping empty entries.
func parsePriority(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
