package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvAPIBase        = "RECORDKEEPER_API_BASE"
	EnvHealthInterval = "RECORDKEEPER_HEALTH_INTERVAL"
)

// parseEnv overlays Config with values from the environment. A .env file in
// the working directory is loaded first when present; real environment
// variables win over the file.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv(EnvAPIBase); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv(EnvHealthInterval); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HealthCheckInterval = d
		}
	}
}
