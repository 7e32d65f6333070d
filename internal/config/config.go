package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/maltedev/amazon-reviews-scraper/internal/models"
)

type Config struct {
	Server   ServerConfig
	Scraper  ScraperConfig
	Browser  BrowserConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type ScraperConfig struct {
	BaseURL       string
	PageDelay     time.Duration
	ProductDelay  time.Duration
	SettleDelay   time.Duration
	SelectorsFile string
	Screenshots   bool
	ScreenshotDir string
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Enabled bool
	Addr    string
	Stream  string
}

type LoggingConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ScrapeConfig is the per-run configuration supplied by the CLI or the API.
// Read-only after pipeline start.
type ScrapeConfig struct {
	Keyword     string `json:"keyword"`
	StarFilter  string `json:"star_filter"`
	MaxProducts int    `json:"max_products"`
	MaxPages    int    `json:"max_pages"`
	Headless    bool   `json:"headless"`
	CookiesPath string `json:"cookies_path"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Scraper: ScraperConfig{
			BaseURL:       getEnvOrDefault("SCRAPER_BASE_URL", "https://www.amazon.com"),
			PageDelay:     getDurationOrDefault("SCRAPER_PAGE_DELAY", 2*time.Second),
			ProductDelay:  getDurationOrDefault("SCRAPER_PRODUCT_DELAY", 3*time.Second),
			SettleDelay:   getDurationOrDefault("SCRAPER_SETTLE_DELAY", 2*time.Second),
			SelectorsFile: getEnvOrDefault("SCRAPER_SELECTORS_FILE", ""),
			Screenshots:   getBoolOrDefault("SCRAPER_SCREENSHOTS", false),
			ScreenshotDir: getEnvOrDefault("SCRAPER_SCREENSHOT_DIR", "."),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", false),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 60*time.Second),
			UserAgent:      getEnvOrDefault("BROWSER_USER_AGENT", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "America/New_York"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "en-US"),
		},
		Database: DatabaseConfig{
			Enabled:  getBoolOrDefault("DB_ENABLED", false),
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "amazon_reviews"),
		},
		Redis: RedisConfig{
			Enabled: getBoolOrDefault("REDIS_ENABLED", false),
			Addr:    getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Stream:  getEnvOrDefault("REDIS_STREAM", "stream:review_scrapes"),
		},
		Logging: LoggingConfig{
			Level:      getEnvOrDefault("LOG_LEVEL", "info"),
			Format:     getEnvOrDefault("LOG_FORMAT", "text"),
			File:       getEnvOrDefault("LOG_FILE", ""),
			MaxSizeMB:  getIntOrDefault("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getIntOrDefault("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getIntOrDefault("LOG_MAX_AGE_DAYS", 14),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Scraper.BaseURL == "" {
		return fmt.Errorf("SCRAPER_BASE_URL must not be empty")
	}

	if c.Scraper.PageDelay < 0 || c.Scraper.ProductDelay < 0 {
		return fmt.Errorf("scraper delays must not be negative")
	}

	if c.Database.Enabled && c.Database.User == "" {
		return fmt.Errorf("DB_USER is required when DB_ENABLED is set")
	}

	return nil
}

// Validate checks the per-run inputs before any browser activity starts.
func (sc *ScrapeConfig) Validate() error {
	if sc.Keyword == "" {
		return fmt.Errorf("keyword must not be empty")
	}

	if !models.ValidStarFilter(sc.StarFilter) {
		return fmt.Errorf("invalid star filter %q", sc.StarFilter)
	}

	if sc.MaxProducts < 1 {
		return fmt.Errorf("max products must be at least 1")
	}

	if sc.MaxPages < 1 {
		return fmt.Errorf("max pages must be at least 1")
	}

	return nil
}

// StarFilterParam returns the query parameter value for the configured
// filter, or empty when all reviews are wanted.
func (sc *ScrapeConfig) StarFilterParam() string {
	if sc.StarFilter == "" || sc.StarFilter == "all" {
		return ""
	}
	return models.StarFilters[sc.StarFilter]
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
