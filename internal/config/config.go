// Package config loads bot configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the bot process.
type Config struct {
	TelegramBotToken string
	TelegramAPIBase  string

	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	Model             string
	MaxTokens         int
	Temperature       float64

	MaxMessageLength  int
	MaxHistory        int
	LLMTimeoutSeconds int

	SearchTimeoutSeconds int

	PollTimeoutSeconds    int
	SleepSeconds          int
	DropPending           bool
	TypingIntervalSeconds int
	ReplyMaxAttempts      int

	DBPath      string
	MetricsAddr string
	LogLevel    string
}

// Load reads configuration from the environment, loading a .env file first
// if one is present. Returns an error when a required credential is missing
// or a numeric value is out of range.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		TelegramBotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenRouterAPIKey:      os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL:     envOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		Model:                 envOrDefault("LLM_MODEL", "anthropic/claude-sonnet-4"),
		MaxTokens:             envIntOrDefault("LLM_MAX_TOKENS", 1000),
		Temperature:           envFloatOrDefault("LLM_TEMPERATURE", 0.7),
		MaxMessageLength:      envIntOrDefault("MAX_MESSAGE_LENGTH", 4000),
		MaxHistory:            envIntOrDefault("MAX_HISTORY_MESSAGES", 20),
		LLMTimeoutSeconds:     envIntOrDefault("LLM_REQUEST_TIMEOUT", 30),
		SearchTimeoutSeconds:  envIntOrDefault("SEARCH_TIMEOUT", 10),
		PollTimeoutSeconds:    envIntOrDefault("TG_POLL_TIMEOUT", 30),
		SleepSeconds:          envIntOrDefault("TG_SLEEP_SECONDS", 1),
		DropPending:           envBoolOrDefault("TG_DROP_PENDING", true),
		TypingIntervalSeconds: envIntOrDefault("TYPING_INTERVAL_SECONDS", 4),
		ReplyMaxAttempts:      envIntOrDefault("REPLY_MAX_ATTEMPTS", 3),
		DBPath:                envOrDefault("BOT_DB_PATH", "./assistant.db"),
		MetricsAddr:           os.Getenv("METRICS_ADDR"),
		LogLevel:              envOrDefault("LOG_LEVEL", "info"),
	}

	if cfg.TelegramBotToken == "" {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is required")
	}
	if cfg.OpenRouterAPIKey == "" {
		return Config{}, fmt.Errorf("OPENROUTER_API_KEY environment variable is required")
	}
	if cfg.MaxMessageLength <= 0 {
		return Config{}, fmt.Errorf("MAX_MESSAGE_LENGTH must be positive, got %d", cfg.MaxMessageLength)
	}
	if cfg.MaxHistory <= 0 {
		return Config{}, fmt.Errorf("MAX_HISTORY_MESSAGES must be positive, got %d", cfg.MaxHistory)
	}
	if cfg.LLMTimeoutSeconds <= 0 {
		return Config{}, fmt.Errorf("LLM_REQUEST_TIMEOUT must be positive, got %d", cfg.LLMTimeoutSeconds)
	}
	if cfg.ReplyMaxAttempts <= 0 {
		return Config{}, fmt.Errorf("REPLY_MAX_ATTEMPTS must be positive, got %d", cfg.ReplyMaxAttempts)
	}

	cfg.TelegramAPIBase = fmt.Sprintf("https://api.telegram.org/bot%s", cfg.TelegramBotToken)
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloatOrDefault(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBoolOrDefault(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v == "1" || strings.EqualFold(v, "true")
}
