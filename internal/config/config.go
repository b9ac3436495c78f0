package config

import (
	"os"
	"strconv"
	"time"

	"cladeshift/domain/clade"
	"cladeshift/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Thresholds clade.Thresholds
	Database   DatabaseConfig
	LLM        LLMConfig
	Server     ServerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// LLMConfig holds interpretation collaborator settings
type LLMConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// Load reads configuration from environment variables and validates it.
// Threshold validation happens here, before any tree processing begins.
func Load() (*Config, error) {
	thresholds, err := loadThresholds()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load threshold configuration")
	}

	cfg := &Config{
		Thresholds: thresholds,
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		LLM: LLMConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL:     os.Getenv("OPENAI_BASE_URL"),
			MaxTokens:   getEnvInt("OPENAI_MAX_TOKENS", 2000),
			Temperature: getEnvFloat("OPENAI_TEMPERATURE", 0.2),
			Timeout:     time.Duration(getEnvInt("OPENAI_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "release"),
		},
	}
	return cfg, nil
}

func loadThresholds() (clade.Thresholds, error) {
	policy, err := clade.ParsePolicy(os.Getenv("ASSIGN_POLICY"))
	if err != nil {
		return clade.Thresholds{}, err
	}
	return clade.NewThresholds(
		getEnvInt("MIN_TARGETED", 2),
		getEnvInt("MAX_OTHER_SAMPLES", 1),
		getEnvInt("MAX_TOTAL_SAMPLES", 20),
		policy,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
