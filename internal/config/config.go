// Package config loads runtime configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider selects the text-generation backend for enrichment.
type Provider string

const (
	ProviderGoogleAI Provider = "googleai"
	ProviderOllama   Provider = "ollama"
	ProviderOpenAI   Provider = "openai"
	ProviderBedrock  Provider = "bedrock"
	ProviderDisabled Provider = "disabled"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Rama Judicial API
	RamaBaseURL string
	RamaTimeout time.Duration

	// Enrichment LLM
	LLMProvider  Provider
	LLMModel     string
	LLMTimeout   time.Duration
	GoogleAPIKey string
	OpenAIAPIKey string
	OllamaHost   string
	AWSRegion    string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// REST server
	ServerPort string
}

// Load reads configuration from environment variables, after loading an
// optional .env file from the working directory.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "ramatrack"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "procesos"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		RamaBaseURL: getEnv("RAMATRACK_API_BASE_URL", "https://consultaprocesos.ramajudicial.gov.co:448/api/v2"),
		RamaTimeout: getDuration("RAMATRACK_API_TIMEOUT", 30*time.Second),

		LLMProvider:  Provider(getEnv("RAMATRACK_LLM_PROVIDER", string(ProviderGoogleAI))),
		LLMModel:     getEnv("RAMATRACK_LLM_MODEL", "gemini-1.5-flash-latest"),
		LLMTimeout:   getDuration("RAMATRACK_LLM_TIMEOUT", 60*time.Second),
		GoogleAPIKey: os.Getenv("GOOGLE_API_KEY"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OllamaHost:   getEnv("OLLAMA_HOST", "http://localhost:11434"),
		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),

		LogFile:  getEnv("RAMATRACK_LOG_FILE", "/tmp/ramatrack.log"),
		LogLevel: parseLogLevel(getEnv("RAMATRACK_LOG_LEVEL", "INFO")),

		ServerPort: getEnv("RAMATRACK_SERVER_PORT", "8485"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
