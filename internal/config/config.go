// Package config loads engine configuration from the environment
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime configuration for the engine
type Config struct {
	DatabaseURL string        `mapstructure:"database_url"`
	Port        string        `mapstructure:"port"`
	LLMURL      string        `mapstructure:"llm_url"`
	LLMTimeout  time.Duration `mapstructure:"-"`
	OutputDir   string        `mapstructure:"output_dir"`
	CORSOrigins []string      `mapstructure:"cors_origins"`
	LogLevel    string        `mapstructure:"log_level"`
}

// Load reads configuration from environment variables with defaults.
// DATABASE_URL is optional here; callers that require a store decide
// whether its absence is fatal.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("llm_url", "http://localhost:8000")
	v.SetDefault("llm_timeout_seconds", 60)
	v.SetDefault("output_dir", "generated")
	v.SetDefault("cors_origins", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("log_level", "info")

	cfg := &Config{
		DatabaseURL: v.GetString("database_url"),
		Port:        v.GetString("port"),
		LLMURL:      v.GetString("llm_url"),
		OutputDir:   v.GetString("output_dir"),
		CORSOrigins: splitOrigins(v.GetString("cors_origins")),
		LogLevel:    v.GetString("log_level"),
	}

	seconds := v.GetInt("llm_timeout_seconds")
	if seconds <= 0 {
		seconds = 60
	}
	cfg.LLMTimeout = time.Duration(seconds) * time.Second

	return cfg, nil
}

// splitOrigins parses the comma-separated CORS_ORIGINS value
func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
