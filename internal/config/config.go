package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// defaultSystemPrompt is the fallback persona when neither
// FOLIO_SYSTEM_PROMPT nor FOLIO_SYSTEM_PROMPT_FILE is set. The chat core
// treats whatever ends up here as an opaque string.
const defaultSystemPrompt = `You are the assistant of a personal portfolio site.
Answer questions about the site owner's work, projects and background.
Be brief and friendly. If you don't know something, say so.`

type Config struct {
	Port string

	// Primary provider (Gemini API).
	GeminiAPIKey string
	GeminiModel  string

	// Backup provider (OpenAI-compatible completions endpoint).
	BackupAPIKey  string
	BackupBaseURL string
	BackupModel   string

	// Generation knobs shared by both providers.
	SystemPrompt    string
	Temperature     float64
	MaxOutputTokens int

	// CallTimeout bounds every single provider call so a hung request
	// cannot leave a chat busy forever.
	CallTimeout time.Duration

	// SessionTTL controls when abandoned widget chats are dropped from
	// the in-memory registry.
	SessionTTL time.Duration

	// Rate limiting for the unauthenticated widget endpoint.
	RateLimit float64
	RateBurst int

	UseMockLLM bool
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}

func getFloatEnv(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using default %g", key, v, def)
		return def
	}
	return f
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %s", key, v, def)
		return def
	}
	return d
}

// Load reads all env vars and builds the config. A .env file is honored
// when present (local dev), real env always wins.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("FOLIO_PORT", "8080"),

		GeminiAPIKey: getEnv("FOLIO_GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("FOLIO_GEMINI_MODEL", "gemini-2.5-flash"),

		BackupAPIKey:  getEnv("FOLIO_BACKUP_API_KEY", ""),
		BackupBaseURL: getEnv("FOLIO_BACKUP_BASE_URL", "https://api.openai.com/v1"),
		BackupModel:   getEnv("FOLIO_BACKUP_MODEL", "gpt-4o-mini"),

		SystemPrompt:    loadSystemPrompt(),
		Temperature:     getFloatEnv("FOLIO_TEMPERATURE", 0.7),
		MaxOutputTokens: getIntEnv("FOLIO_MAX_OUTPUT_TOKENS", 1024),

		CallTimeout: getDurationEnv("FOLIO_CALL_TIMEOUT", 30*time.Second),
		SessionTTL:  getDurationEnv("FOLIO_SESSION_TTL", 30*time.Minute),

		RateLimit: getFloatEnv("FOLIO_RATE_LIMIT", 5),
		RateBurst: getIntEnv("FOLIO_RATE_BURST", 10),

		UseMockLLM: getBoolEnv("FOLIO_USE_MOCK_LLM", false),
	}

	return cfg
}

func loadSystemPrompt() string {
	if v := os.Getenv("FOLIO_SYSTEM_PROMPT"); v != "" {
		return v
	}
	if path := os.Getenv("FOLIO_SYSTEM_PROMPT_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("reading FOLIO_SYSTEM_PROMPT_FILE: %v", err)
		}
		return string(data)
	}
	return defaultSystemPrompt
}
