package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file named by ARENA_ENV (or .env by default), then the
// matching .secret sidecar if it exists. Variables already set in the
// process environment win. All config is flat env vars read via os.Getenv
// after loading.
func Load() error {
	envFile := os.Getenv("ARENA_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Missing files are fine; a malformed one is not.
	if err := loadOptional(envFile); err != nil {
		return err
	}
	return loadOptional(envFile + ".secret")
}

func loadOptional(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func ServerPort() int {
	return intEnv("SERVER_PORT", 8080)
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

// LLMProvider returns the configured text-generation provider.
// Defaults to "gemini" if not set.
// Valid values: gemini, anthropic, openai, mock
func LLMProvider() string {
	return stringEnv("LLM_PROVIDER", "gemini")
}

// LLMModel overrides the provider's default model when set.
func LLMModel() string {
	return os.Getenv("LLM_MODEL")
}

// LLMAPIKey returns the API key for the configured LLM provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "anthropic":
		return AnthropicAPIKey()
	case "openai":
		return OpenAIAPIKey()
	case "mock":
		return ""
	default:
		return GeminiAPIKey()
	}
}

// LLMTimeout bounds each text-generation call. Defaults to 20s.
func LLMTimeout() time.Duration {
	return durationEnv("LLM_TIMEOUT", 20*time.Second)
}

// EmbeddingProvider returns the configured embedding provider.
// Defaults to "none", which matches belief topics exactly.
// Valid values: none, openai, mock
func EmbeddingProvider() string {
	return stringEnv("EMBEDDING_PROVIDER", "none")
}

// EmbeddingAPIKey returns the API key for the configured embedding provider.
func EmbeddingAPIKey() string {
	if EmbeddingProvider() == "openai" {
		return OpenAIAPIKey()
	}
	return ""
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	return intEnv("RATE_LIMIT_BURST", 20)
}

// CORSAllowedOrigins returns the comma-separated CORS_ALLOWED_ORIGINS list.
// Defaults to all origins.
func CORSAllowedOrigins() []string {
	raw := os.Getenv("CORS_ALLOWED_ORIGINS")
	if raw == "" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// ReconcileInterval is how often profile rollups are rebuilt. Defaults to 1h.
func ReconcileInterval() time.Duration {
	return durationEnv("RECONCILE_INTERVAL", time.Hour)
}

func ReconcileConcurrency() int {
	return intEnv("RECONCILE_CONCURRENCY", 4)
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	return stringEnv("LOG_LEVEL", "info")
}

// LogFormat is "json" (default) or "console".
func LogFormat() string {
	return stringEnv("LOG_FORMAT", "json")
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func durationEnv(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
