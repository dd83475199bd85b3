package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Target configuration
	TargetDomain string   // substring matched against result URLs
	Keywords     []string // keyword list for batch and scheduled runs
	SearchPages  int      // result pages scraped per keyword

	// Browser configuration
	Headless    bool
	BrowserPath string // optional Chrome/Chromium executable override

	// Pacing configuration (milliseconds unless noted)
	NavDelayMinMs       int
	NavDelayMaxMs       int
	PageDelayMinMs      int
	PageDelayMaxMs      int
	KeywordDelaySeconds int
	BulkDelaySeconds    int
	NavTimeoutSeconds   int
	CaptchaWaitSeconds  int

	// Store configuration
	DataDir      string
	StoreBackend string // "ndjson", "sqlite" or "postgres"
	PostgresDSN  string

	// Schedule configuration
	Schedule string // "off", "hourly", "daily" or "weekly"
	TimeZone string

	// Report archive configuration
	ArchiveBackend   string // "", "local" or "azure"
	ArchiveDir       string
	StorageAccount   string
	StorageContainer string

	// Notification configuration
	WebhookURL        string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string

	// Logging configuration
	LogDir string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		TargetDomain: getEnv("TARGET_DOMAIN", ""),
		Keywords:     getSliceEnv("KEYWORDS", nil),
		SearchPages:  getIntEnv("SEARCH_PAGES", 5),

		Headless:    getBoolEnv("HEADLESS", true),
		BrowserPath: getEnv("BROWSER_PATH", ""),

		NavDelayMinMs:       getIntEnv("NAV_DELAY_MIN_MS", 2000),
		NavDelayMaxMs:       getIntEnv("NAV_DELAY_MAX_MS", 5000),
		PageDelayMinMs:      getIntEnv("PAGE_DELAY_MIN_MS", 3000),
		PageDelayMaxMs:      getIntEnv("PAGE_DELAY_MAX_MS", 7000),
		KeywordDelaySeconds: getIntEnv("KEYWORD_DELAY_SECONDS", 60),
		BulkDelaySeconds:    getIntEnv("BULK_DELAY_SECONDS", 5),
		NavTimeoutSeconds:   getIntEnv("NAV_TIMEOUT_SECONDS", 30),
		CaptchaWaitSeconds:  getIntEnv("CAPTCHA_WAIT_SECONDS", 60),

		DataDir:      getEnv("DATA_DIR", "data"),
		StoreBackend: getEnv("STORE_BACKEND", "ndjson"),
		PostgresDSN:  getEnv("POSTGRES_DSN", ""),

		Schedule: getEnv("SCHEDULE", "off"),
		TimeZone: getEnv("TIMEZONE", "UTC"),

		ArchiveBackend:   getEnv("ARCHIVE_BACKEND", ""),
		ArchiveDir:       getEnv("ARCHIVE_DIR", "archive"),
		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "rankings"),

		WebhookURL:        getEnv("WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		LogDir: getEnv("LOG_DIR", "logs"),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.TargetDomain == "" {
		return fmt.Errorf("TARGET_DOMAIN is required")
	}

	if c.SearchPages < 1 {
		return fmt.Errorf("SEARCH_PAGES must be at least 1")
	}

	if c.NavDelayMinMs > c.NavDelayMaxMs {
		return fmt.Errorf("NAV_DELAY_MIN_MS must not exceed NAV_DELAY_MAX_MS")
	}

	if c.PageDelayMinMs > c.PageDelayMaxMs {
		return fmt.Errorf("PAGE_DELAY_MIN_MS must not exceed PAGE_DELAY_MAX_MS")
	}

	switch c.StoreBackend {
	case "ndjson", "sqlite":
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORE_BACKEND is 'postgres'")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be 'ndjson', 'sqlite' or 'postgres'")
	}

	switch c.Schedule {
	case "off", "hourly", "daily", "weekly":
	default:
		return fmt.Errorf("SCHEDULE must be 'off', 'hourly', 'daily' or 'weekly'")
	}

	switch c.ArchiveBackend {
	case "", "local":
	case "azure":
		if c.StorageAccount == "" {
			return fmt.Errorf("AZURE_STORAGE_ACCOUNT is required when ARCHIVE_BACKEND is 'azure'")
		}
	default:
		return fmt.Errorf("ARCHIVE_BACKEND must be 'local' or 'azure'")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}
