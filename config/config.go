package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Fetch modes
const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Config represents the application configuration
type Config struct {
	// Fetch configuration
	FetchMode    string
	FetchTimeout time.Duration
	UserAgent    string

	// Marketplace configuration
	AmazonHost string

	// Browser configuration
	BrowserWS       string
	BrowserBin      string
	BrowserHeadless bool

	// Service wrapper configuration
	ServerAddr  string
	GinMode     string
	WorkerCount int
	JobTTL      time.Duration

	// Memcache configuration
	MemcacheAddr string

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int
	PublishResults       bool

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		FetchMode:            strings.ToLower(getEnv("FETCH_MODE", FetchModeHTTP)),
		FetchTimeout:         time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 30)) * time.Second,
		UserAgent:            getEnv("USER_AGENT", defaultUserAgent),
		AmazonHost:           getEnv("AMAZON_HOST", "www.amazon.eg"),
		BrowserWS:            getEnv("BROWSER_WS", ""),
		BrowserBin:           getEnv("BROWSER_BIN", ""),
		BrowserHeadless:      getEnvBool("BROWSER_HEADLESS", true),
		ServerAddr:           getEnv("SERVER_ADDR", ":8080"),
		GinMode:              getEnv("GIN_MODE", "release"),
		WorkerCount:          getEnvInt("WORKER_COUNT", 4),
		JobTTL:               time.Duration(getEnvInt("JOB_TTL_SECONDS", 3600)) * time.Second,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "productscraper"),
		RedisStreamMaxLength: getEnvInt("REDIS_STREAM_MAX_LENGTH", 1000),
		PublishResults:       getEnvBool("PUBLISH_RESULTS", false),
		Environment:          getEnv("SCRAPER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the rest of the program cannot use
func (c *Config) Validate() error {
	if c.FetchMode != FetchModeHTTP && c.FetchMode != FetchModeBrowser {
		return fmt.Errorf("unsupported FETCH_MODE %q (want %q or %q)", c.FetchMode, FetchModeHTTP, FetchModeBrowser)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT_SECONDS must be positive")
	}
	if strings.TrimSpace(c.AmazonHost) == "" {
		return fmt.Errorf("AMAZON_HOST must not be empty")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive")
	}
	if c.JobTTL <= 0 {
		return fmt.Errorf("JOB_TTL_SECONDS must be positive")
	}
	if c.PublishResults && c.RedisStream == "" {
		return fmt.Errorf("REDIS_STREAM must be set when PUBLISH_RESULTS is enabled")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
