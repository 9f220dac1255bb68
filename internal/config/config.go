// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir      string // Base directory for the dataset database (always absolute)
	ExchangeURL  string // Material price endpoint of the game exchange
	SheetURL     string // Published guild sheet (CSV export URL or share URL)
	GitHubToken  string // GitHub personal access token for publishing exports
	GitHubRepo   string // Repository for published exports, "owner/repo" format
	GitHubBranch string
	ExportDir    string // Local directory for JSON exports
	LogLevel     string
	Port         int
	DevMode      bool

	SheetRefreshSchedule string // cron spec for the sheet import job
	PriceRefreshSchedule string // cron spec for the quote refresh + export job
	PublishSchedule      string // cron spec for the GitHub publish job
	PublishMinIntervalS  int    // Minimum seconds between two publishes
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("GUILD_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:      absDataDir,
		Port:         getEnvAsInt("GUILD_PORT", 8010),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		ExchangeURL:  getEnv("EXCHANGE_API_URL", "https://api.g2.galactictycoons.com/public/exchange/mat-prices"),
		SheetURL:     getEnv("GUILD_SHEET_URL", ""),
		GitHubToken:  getEnv("GITHUB_TOKEN", ""),
		GitHubRepo:   getEnv("GITHUB_REPO", ""),
		GitHubBranch: getEnv("GITHUB_BRANCH", "main"),
		ExportDir:    getEnv("EXPORT_DIR", filepath.Join(absDataDir, "api_exports")),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		SheetRefreshSchedule: getEnv("SHEET_REFRESH_SCHEDULE", "@every 10m"),
		PriceRefreshSchedule: getEnv("PRICE_REFRESH_SCHEDULE", "@every 10m"),
		PublishSchedule:      getEnv("PUBLISH_SCHEDULE", "@every 2m"),
		PublishMinIntervalS:  getEnvAsInt("PUBLISH_MIN_INTERVAL_SECONDS", 120),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	// Sheet URL and GitHub credentials are optional: without a sheet URL the
	// server still serves whatever dataset was last persisted, and without a
	// token publishing is simply disabled.
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
