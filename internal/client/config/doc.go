// Package config loads runtime configuration for the recordkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, with an optional .env file (see parseEnv).
//  3. Optional JSON file selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the record API
//	-i int      health check interval (seconds)
//
// Environment
//
//	RECORDKEEPER_API_BASE          base URL of the record API
//	RECORDKEEPER_HEALTH_INTERVAL   health check interval, e.g. "30s"
//
// # JSON schema
//
// Durations can be strings like "30s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8080/api",
//	  "health_check_interval": "30s"
//	}
package config
