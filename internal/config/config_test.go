package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.SurrealDBNamespace != "ramatrack" {
		t.Errorf("Expected namespace 'ramatrack', got %q", cfg.SurrealDBNamespace)
	}
	if !strings.Contains(cfg.RamaBaseURL, "ramajudicial.gov.co") {
		t.Errorf("Unexpected default base URL %q", cfg.RamaBaseURL)
	}
	if cfg.RamaTimeout != 30*time.Second {
		t.Errorf("Expected 30s API timeout, got %s", cfg.RamaTimeout)
	}
	if cfg.LLMProvider != ProviderGoogleAI {
		t.Errorf("Expected default provider googleai, got %q", cfg.LLMProvider)
	}
	if cfg.ServerPort != "8485" {
		t.Errorf("Expected default port 8485, got %q", cfg.ServerPort)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RAMATRACK_LLM_PROVIDER", "disabled")
	t.Setenv("RAMATRACK_API_TIMEOUT", "5s")
	t.Setenv("RAMATRACK_LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.LLMProvider != ProviderDisabled {
		t.Errorf("Expected provider disabled, got %q", cfg.LLMProvider)
	}
	if cfg.RamaTimeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %s", cfg.RamaTimeout)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("Expected debug level, got %s", cfg.LogLevel)
	}
}

func TestGetDurationIgnoresGarbage(t *testing.T) {
	t.Setenv("RAMATRACK_API_TIMEOUT", "not-a-duration")

	cfg := Load()
	if cfg.RamaTimeout != 30*time.Second {
		t.Errorf("Expected fallback to 30s, got %s", cfg.RamaTimeout)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDualOutputLogging(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("ingest complete", "external_id", "198167821")

	if !strings.Contains(stderr.String(), "ingest complete") {
		t.Error("Expected message on the text handler")
	}

	var entry map[string]any
	if err := json.Unmarshal(file.Bytes(), &entry); err != nil {
		t.Fatalf("File output is not JSON: %v", err)
	}
	if entry["external_id"] != "198167821" {
		t.Errorf("Expected structured attribute in JSON output, got %v", entry)
	}

	// Below-level records are dropped by both handlers.
	stderr.Reset()
	file.Reset()
	logger.Debug("noise")
	if stderr.Len() != 0 || file.Len() != 0 {
		t.Error("Debug record must be dropped at info level")
	}
}
