package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Extractor strategy names accepted by EXTRACTOR.
const (
	ExtractorLexical = "lexical"
	ExtractorLLM     = "llm"
)

// Config holds application configuration
type Config struct {
	DatabaseURL         string        `yaml:"database_url"`
	ServerPort          string        `yaml:"server_port"`
	FrontendURL         string        `yaml:"frontend_url"`
	OpenAIKey           string        `yaml:"openai_api_key"`
	AIModel             string        `yaml:"ai_model"`
	AIBaseURL           string        `yaml:"ai_base_url"`
	TranscribeModel     string        `yaml:"transcribe_model"`
	Extractor           string        `yaml:"extractor"`
	Timezone            string        `yaml:"timezone"`
	SilenceThreshold    int64         `yaml:"silence_threshold_bytes"`
	ExternalCallTimeout time.Duration `yaml:"external_call_timeout"`
	RateLimit           string        `yaml:"rate_limit"`
	TempDir             string        `yaml:"temp_dir"`
	EnableHSTS          bool          `yaml:"enable_hsts"`
	ServerDebugMode     bool          `yaml:"server_debug_mode"`
	OTELEnabled         bool          `yaml:"otel_enabled"`
	OTELEndpoint        string        `yaml:"otel_endpoint"`
}

// Load loads configuration from environment variables, with an optional
// YAML file overlay pointed at by CONFIG_FILE. Environment variables win
// over file values.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:          "8080",
		FrontendURL:         "http://localhost:3000",
		Extractor:           ExtractorLexical,
		Timezone:            "Asia/Seoul",
		SilenceThreshold:    100,
		ExternalCallTimeout: 30 * time.Second,
		RateLimit:           "10-M",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.FrontendURL = getEnv("FRONTEND_URL", cfg.FrontendURL)
	cfg.OpenAIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIKey)
	cfg.AIModel = getEnv("AI_MODEL", cfg.AIModel)
	cfg.AIBaseURL = getEnv("AI_BASE_URL", cfg.AIBaseURL)
	cfg.TranscribeModel = getEnv("TRANSCRIBE_MODEL", cfg.TranscribeModel)
	cfg.Extractor = getEnv("EXTRACTOR", cfg.Extractor)
	cfg.Timezone = getEnv("TIMEZONE", cfg.Timezone)
	cfg.SilenceThreshold = getEnvInt64("SILENCE_THRESHOLD_BYTES", cfg.SilenceThreshold)
	cfg.ExternalCallTimeout = getEnvDuration("EXTERNAL_CALL_TIMEOUT", cfg.ExternalCallTimeout)
	cfg.RateLimit = getEnv("RATE_LIMIT", cfg.RateLimit)
	cfg.TempDir = getEnv("TEMP_DIR", cfg.TempDir)
	cfg.EnableHSTS = getEnvBool("ENABLE_HSTS", cfg.EnableHSTS)
	cfg.ServerDebugMode = getEnvBool("SERVER_DEBUG_MODE", cfg.ServerDebugMode)
	cfg.OTELEnabled = getEnvBool("OTEL_ENABLED", cfg.OTELEnabled)
	cfg.OTELEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTELEndpoint)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	switch cfg.Extractor {
	case ExtractorLexical, ExtractorLLM:
	default:
		return nil, fmt.Errorf("EXTRACTOR must be %q or %q, got %q", ExtractorLexical, ExtractorLLM, cfg.Extractor)
	}

	if cfg.Extractor == ExtractorLLM && cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required when EXTRACTOR=%s", ExtractorLLM)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
