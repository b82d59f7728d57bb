package config

import (
	"fmt"
	"os"
)

// Config represents the complete service configuration.
type Config struct {
	// ServerPort is the port the HTTP server listens on.
	ServerPort string

	// Database configuration.
	Database DatabaseConfig

	// RatePlanPath optionally points at a YAML commission rate plan.
	// When empty the built-in defaults apply.
	RatePlanPath string
}

// DatabaseConfig contains Spanner connection configuration.
type DatabaseConfig struct {
	// ProjectID is the GCP project.
	ProjectID string

	// Instance is the Spanner instance name.
	Instance string

	// Database is the database name.
	Database string
}

// LoadFromEnv loads configuration from environment variables.
// This follows the 12-factor app methodology for configuration.
func LoadFromEnv() (*Config, error) {
	config := &Config{
		ServerPort: getEnvOrDefault("SERVER_PORT", "8080"),
		Database: DatabaseConfig{
			ProjectID: os.Getenv("DB_PROJECT_ID"),
			Instance:  os.Getenv("DB_INSTANCE"),
			Database:  os.Getenv("DB_DATABASE"),
		},
		RatePlanPath: os.Getenv("RATE_PLAN_PATH"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is complete.
func (c *Config) Validate() error {
	if c.Database.ProjectID == "" {
		return fmt.Errorf("DB_PROJECT_ID is required")
	}
	if c.Database.Instance == "" {
		return fmt.Errorf("DB_INSTANCE is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	if c.RatePlanPath != "" {
		if _, err := os.Stat(c.RatePlanPath); err != nil {
			return fmt.Errorf("RATE_PLAN_PATH is not readable: %w", err)
		}
	}
	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
