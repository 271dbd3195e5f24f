package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultUserID identifies the single local user when USER_ID is unset.
const DefaultUserID = "00000000-0000-0000-0000-000000000001"

var (
	ErrMissingVikunjaURL   = errors.New("VIKUNJA_URL is required")
	ErrMissingVikunjaToken = errors.New("VIKUNJA_TOKEN is required")
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string
	UserID    string

	// Vikunja
	VikunjaURL       string
	VikunjaToken     string
	VikunjaTimeout   time.Duration
	DefaultProjectID int64

	// LLM
	LLMBaseURL           string
	LLMAPIKey            string
	LLMModel             string
	LLMTimeout           time.Duration
	LLMMaxToolIterations int

	// Database. An empty DatabaseURL selects SQLite at SQLitePath.
	DatabaseURL string
	SQLitePath  string

	// Redis. Caching is disabled when RedisURL is empty.
	RedisURL string
	CacheTTL time.Duration

	// RabbitMQ. Events are only logged when RabbitMQURL is empty.
	RabbitMQURL   string
	EventExchange string

	// HTTP API
	HTTPAddr string

	// MCP
	MCPAddr      string
	MCPAuthToken string

	// Worker
	WorkerInterval   time.Duration
	WorkerHealthAddr string

	// Scoring
	ScoringConfigPath string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		UserID:    getEnv("USER_ID", DefaultUserID),

		VikunjaURL:       getEnv("VIKUNJA_URL", ""),
		VikunjaToken:     getEnv("VIKUNJA_TOKEN", ""),
		VikunjaTimeout:   getDurationEnv("VIKUNJA_TIMEOUT", 15*time.Second),
		DefaultProjectID: getInt64Env("DEFAULT_PROJECT_ID", 0),

		LLMBaseURL:           getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:            getEnv("LLM_API_KEY", ""),
		LLMModel:             getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout:           getDurationEnv("LLM_TIMEOUT", 60*time.Second),
		LLMMaxToolIterations: getIntEnv("LLM_MAX_TOOL_ITERATIONS", 8),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", ""),

		RedisURL: getEnv("REDIS_URL", ""),
		CacheTTL: getDurationEnv("CACHE_TTL", 30*time.Second),

		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),
		EventExchange: getEnv("EVENT_EXCHANGE", "vikunja_ai.events"),

		HTTPAddr: getEnv("HTTP_ADDR", "0.0.0.0:8080"),

		MCPAddr:      getEnv("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),

		WorkerInterval:   getDurationEnv("WORKER_INTERVAL", 5*time.Minute),
		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),

		ScoringConfigPath: getEnv("SCORING_CONFIG", ""),
	}

	return cfg, nil
}

// Validate reports settings without which nothing can run.
func (c *Config) Validate() error {
	var errs []error
	if c.VikunjaURL == "" {
		errs = append(errs, ErrMissingVikunjaURL)
	}
	if c.VikunjaToken == "" {
		errs = append(errs, ErrMissingVikunjaToken)
	}
	return errors.Join(errs...)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LLMEnabled reports whether an LLM key is configured.
func (c *Config) LLMEnabled() bool {
	return c.LLMAPIKey != ""
}

// LoadYAMLOverrides decodes the YAML file at path on top of dst, so fields
// missing from the file keep their current values. Unknown keys are rejected.
// An empty path leaves dst untouched.
func LoadYAMLOverrides(path string, dst any) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
