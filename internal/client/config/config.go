package config

import "time"

// Config holds runtime settings for the recordkeeper CLI.
//
// Fields:
//   - APIBaseURL: base URL of the record API, including the /api prefix.
//   - HealthCheckInterval: how often the client probes server reachability.
type Config struct {
	APIBaseURL          string
	HealthCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8080/api"
	c.HealthCheckInterval = 30 * time.Second
}

// LoadConfig constructs a Config by applying defaults, then overlaying
// environment variables (including a .env file if present), a JSON file
// (if given via -c/-config), and finally command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
