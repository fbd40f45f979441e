package common

import (
	"os"
	"strconv"
	"time"

	"github.com/cinelog/ticket-scanner/constants"
)

// Config holds all application configuration.
type Config struct {
	Providers ProvidersConfig
	Catalog   CatalogConfig
	OCR       OCRConfig
	Database  DatabaseConfig
	Cache     CacheConfig
}

// ProviderConfig configures one vision backend. A provider with an empty
// APIKey is simply not registered.
type ProviderConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// ProvidersConfig holds per-backend settings plus the preferred default.
type ProvidersConfig struct {
	Default    string
	OpenAI     ProviderConfig
	Gemini     ProviderConfig
	Anthropic  ProviderConfig
	OpenRouter ProviderConfig
}

// CatalogConfig configures the movie-metadata lookup service.
type CatalogConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// OCRConfig configures the legacy deterministic pipeline.
type OCRConfig struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string
	MaxDimension  int // bounded resize for preprocessing, default 2000
}

// DatabaseConfig holds scan-outcome store settings. An empty DSN selects the
// embedded sqlite store at SQLitePath.
type DatabaseConfig struct {
	DSN             string
	SQLitePath      string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// CacheConfig holds the recent-scan cache location.
type CacheConfig struct {
	Path string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Providers: ProvidersConfig{
			Default: getEnv("SCAN_DEFAULT_PROVIDER", constants.ProviderOpenAI),
			OpenAI: ProviderConfig{
				APIKey:     getEnv("OPENAI_API_KEY", ""),
				Model:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
				BaseURL:    getEnv("OPENAI_BASE_URL", ""),
				Timeout:    getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
				MaxRetries: getEnvAsInt("OPENAI_MAX_RETRIES", 3),
			},
			Gemini: ProviderConfig{
				APIKey:     getEnv("GEMINI_API_KEY", ""),
				Model:      getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
				Timeout:    getEnvAsDuration("GEMINI_TIMEOUT", 45*time.Second),
				MaxRetries: getEnvAsInt("GEMINI_MAX_RETRIES", 3),
			},
			Anthropic: ProviderConfig{
				APIKey:     getEnv("ANTHROPIC_API_KEY", ""),
				Model:      getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
				BaseURL:    getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
				Timeout:    getEnvAsDuration("ANTHROPIC_TIMEOUT", 45*time.Second),
				MaxRetries: getEnvAsInt("ANTHROPIC_MAX_RETRIES", 3),
			},
			OpenRouter: ProviderConfig{
				APIKey:     getEnv("OPENROUTER_API_KEY", ""),
				Model:      getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
				BaseURL:    getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
				Timeout:    getEnvAsDuration("OPENROUTER_TIMEOUT", 60*time.Second),
				MaxRetries: getEnvAsInt("OPENROUTER_MAX_RETRIES", 3),
			},
		},
		Catalog: CatalogConfig{
			APIKey:  getEnv("TMDB_API_KEY", ""),
			BaseURL: getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			Timeout: getEnvAsDuration("TMDB_TIMEOUT", 10*time.Second),
		},
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			MaxDimension:  getEnvAsInt("OCR_MAX_DIMENSION", 2000),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			SQLitePath:      getEnv("SCAN_DB_PATH", "./scans.db"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Cache: CacheConfig{
			Path: getEnv("SCAN_CACHE_PATH", "./scan-cache.db"),
		},
	}
}

// Validate checks that at least one extraction path is usable.
func (c *Config) Validate() error {
	if !c.HasAnyProvider() {
		return NewAppError("CONFIG_ERROR", "no vision provider API key configured", ErrNoProvider)
	}
	return nil
}

// HasAnyProvider reports whether any vision backend has a credential.
func (c *Config) HasAnyProvider() bool {
	return c.Providers.OpenAI.APIKey != "" ||
		c.Providers.Gemini.APIKey != "" ||
		c.Providers.Anthropic.APIKey != "" ||
		c.Providers.OpenRouter.APIKey != ""
}

// Helper functions for environment variable parsing

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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
