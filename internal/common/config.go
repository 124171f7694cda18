package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Firecrawl FirecrawlConfig
	LLM       LLMConfig
	Batch     BatchConfig
	Listing   ListingConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
}

// FirecrawlConfig holds content-fetch configuration
type FirecrawlConfig struct {
	APIKey           string
	BaseURL          string
	Timeout          time.Duration
	MinContentLength int
}

// LLMConfig holds generative-extraction configuration. Models is the
// candidate cascade, tried in order.
type LLMConfig struct {
	APIKey          string
	BaseURL         string
	Models          []string
	Timeout         time.Duration
	MaxOutputTokens int
	MaxRetries      int
	RetryBackoff    time.Duration
}

// BatchConfig holds batch-orchestrator configuration
type BatchConfig struct {
	Stagger   time.Duration
	Retention time.Duration
}

// ListingConfig holds record-assembly policy knobs
type ListingConfig struct {
	NormalizerMaxChars   int
	ImageSampleSize      int
	LuxuryPriceThreshold float64
}

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is honored when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		},
		Firecrawl: FirecrawlConfig{
			APIKey:           getEnv("FIRECRAWL_API_KEY", ""),
			BaseURL:          getEnv("FIRECRAWL_BASE_URL", "https://api.firecrawl.dev"),
			Timeout:          getEnvAsDuration("FIRECRAWL_TIMEOUT", 30*time.Second),
			MinContentLength: getEnvAsInt("FIRECRAWL_MIN_CONTENT_LENGTH", 100),
		},
		LLM: LLMConfig{
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			BaseURL:         getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
			Models:          getEnvAsList("GEMINI_MODELS", []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-1.5-flash"}),
			Timeout:         getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
			MaxOutputTokens: getEnvAsInt("GEMINI_MAX_OUTPUT_TOKENS", 2048),
			MaxRetries:      getEnvAsInt("GEMINI_MAX_RETRIES", 2),
			RetryBackoff:    getEnvAsDuration("GEMINI_RETRY_BACKOFF", 3*time.Second),
		},
		Batch: BatchConfig{
			Stagger:   getEnvAsDuration("BATCH_STAGGER", 500*time.Millisecond),
			Retention: getEnvAsDuration("BATCH_RETENTION", 7*24*time.Hour),
		},
		Listing: ListingConfig{
			NormalizerMaxChars:   getEnvAsInt("NORMALIZER_MAX_CHARS", 6000),
			ImageSampleSize:      getEnvAsInt("LISTING_IMAGE_SAMPLE_SIZE", 5),
			LuxuryPriceThreshold: getEnvAsFloat64("LISTING_LUXURY_PRICE_THRESHOLD", 10_000_000),
		},
	}
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

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Firecrawl.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "FIRECRAWL_API_KEY is required", ErrInvalidInput)
	}
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required", ErrInvalidInput)
	}
	if len(c.LLM.Models) == 0 {
		return NewAppError("CONFIG_ERROR", "GEMINI_MODELS must name at least one model", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	return nil
}
