// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	// GeminiAPIKey authenticates requests to the generative-language
	// API. Unset means AI requests will fail server-side; the gateway
	// surfaces that as an error string, not a crash.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	// AIModel is the generative model identifier.
	AIModel string `env:"TELECHAT_MODEL" envDefault:"gemini-2.0-flash"`

	// AIEndpoint is the generative-language API base URL.
	AIEndpoint string `env:"TELECHAT_AI_ENDPOINT" envDefault:"https://generativelanguage.googleapis.com"`

	// DataDir holds the chat database, profile and log file.
	// Defaults to ~/.telechat.
	DataDir string `env:"TELECHAT_DATA_DIR"`
}

func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(homeDir, ".telechat")
	}

	return cfg, nil
}
