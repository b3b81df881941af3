// Package config handles loading and validating configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for artlister.
type Config struct {
	// eBay credentials
	EbayClientID     string
	EbayClientSecret string
	EbayRedirectURI  string
	Environment      string // "sandbox" or "production"
	MarketplaceID    string

	// Listing defaults
	Currency        string
	GalleryName     string
	ItemLocation    string
	DefaultQuantity int

	// Storage
	DBPath        string
	TokenFilePath string
	TokenKey      string // base64 AES-256 key; empty means plain-JSON token file

	// Injectable pricing/category tables (optional YAML override)
	TablesPath string

	// Vision analysis
	VisionAPIKey  string
	VisionAPIBase string

	// Scheduled batch runs
	BatchCron   string
	BatchFolder string

	// Web sessions
	SessionKey string
}

// Load reads configuration from environment variables with fallback to .env file.
// Priority order: environment variables > .env file > hardcoded defaults
func Load() (*Config, error) {
	// Attempt to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		EbayClientID:     os.Getenv("EBAY_CLIENT_ID"),
		EbayClientSecret: os.Getenv("EBAY_CLIENT_SECRET"),
		EbayRedirectURI:  os.Getenv("EBAY_REDIRECT_URI"),
		Environment:      getEnv("EBAY_ENVIRONMENT", "sandbox"),
		MarketplaceID:    getEnv("EBAY_MARKETPLACE_ID", "EBAY_US"),

		Currency:        getEnv("LISTING_CURRENCY", "USD"),
		GalleryName:     getEnv("GALLERY_NAME", "Gauntlet Gallery"),
		ItemLocation:    getEnv("ITEM_LOCATION", "United States"),
		DefaultQuantity: getEnvInt("DEFAULT_QUANTITY", 1),

		DBPath:        getEnv("DB_PATH", "./data/artlister.db"),
		TokenFilePath: getEnv("EBAY_TOKEN_FILE", ".ebay_tokens.json"),
		TokenKey:      os.Getenv("EBAY_TOKEN_KEY"),

		TablesPath: os.Getenv("PRICING_TABLES_PATH"),

		VisionAPIKey:  os.Getenv("VISION_API_KEY"),
		VisionAPIBase: getEnv("VISION_API_BASE", "https://api.x.ai/v1"),

		BatchCron:   os.Getenv("BATCH_CRON"),
		BatchFolder: getEnv("BATCH_FOLDER", "./uploads"),

		SessionKey: getEnv("SESSION_KEY", "artlister-dev-session-key"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are consistent.
func (c *Config) Validate() error {
	if c.Environment != "sandbox" && c.Environment != "production" {
		return fmt.Errorf("EBAY_ENVIRONMENT must be \"sandbox\" or \"production\", got %q", c.Environment)
	}

	if c.DefaultQuantity < 1 {
		return fmt.Errorf("DEFAULT_QUANTITY must be at least 1")
	}

	if c.MarketplaceID == "" {
		return fmt.Errorf("EBAY_MARKETPLACE_ID is required")
	}

	return nil
}

// Sandbox reports whether the sandbox environment is configured.
func (c *Config) Sandbox() bool {
	return c.Environment == "sandbox"
}

// MaskedClientSecret returns the client secret with most characters hidden for logging.
func (c *Config) MaskedClientSecret() string {
	return maskSecret(c.EbayClientSecret)
}

// maskSecret hides all but the first and last 4 characters of a secret.
func maskSecret(s string) string {
	if len(s) <= 8 {
		if len(s) == 0 {
			return "(not set)"
		}
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as an integer or returns a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
