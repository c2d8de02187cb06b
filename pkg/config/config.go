// Package config loads process configuration from config.yaml with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the chatbot backend.
// Environment variables always override YAML values. Secrets (database
// password, LLM API key) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Guard    GuardConfig    `yaml:"guard"`
}

// DatabaseConfig holds PostgreSQL connection and pool configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"postgres"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"employees"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	MinConnections int32  `yaml:"min_connections" env:"PGMIN_CONNECTIONS" env-default:"1"`

	// AcquireTimeoutSeconds bounds how long a request waits for a pooled
	// connection before failing with a resource-exhaustion error.
	AcquireTimeoutSeconds int `yaml:"acquire_timeout_seconds" env:"PGACQUIRE_TIMEOUT_SECONDS" env-default:"5"`

	// StatementTimeoutSeconds is applied per transaction so a runaway query
	// is terminated by the backend.
	StatementTimeoutSeconds int `yaml:"statement_timeout_seconds" env:"PGSTATEMENT_TIMEOUT_SECONDS" env-default:"30"`

	// MigrationsPath points at the versioned schema/seed fixture.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// LLMConfig holds configuration for the NL-to-SQL model endpoint.
type LLMConfig struct {
	// Provider selects the client implementation: "openai" (also serves
	// any OpenAI-compatible local endpoint such as Ollama) or "anthropic".
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	BaseURL  string `yaml:"base_url" env:"LLM_BASE_URL" env-default:"http://localhost:11434/v1"`
	Model    string `yaml:"model" env:"LLM_MODEL" env-default:"qwen2.5-coder:0.5b"`
	APIKey   string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML

	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" env:"LLM_REQUEST_TIMEOUT_SECONDS" env-default:"60"`
	MaxRetries            int `yaml:"max_retries" env:"LLM_MAX_RETRIES" env-default:"2"`
}

// GuardConfig holds the query safety limits, fixed at process start.
type GuardConfig struct {
	DefaultRowLimit int `yaml:"default_row_limit" env:"DEFAULT_ROW_LIMIT" env-default:"50"`
	MaxRowLimit     int `yaml:"max_row_limit" env:"MAX_ROW_LIMIT" env-default:"500"`
}

// Load reads configuration from the given YAML file with environment
// variable overrides. If the file does not exist, configuration comes from
// environment variables and defaults alone.
func Load(path, version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Guard.DefaultRowLimit <= 0 {
		return fmt.Errorf("default_row_limit must be positive, got %d", c.Guard.DefaultRowLimit)
	}
	if c.Guard.MaxRowLimit <= 0 {
		return fmt.Errorf("max_row_limit must be positive, got %d", c.Guard.MaxRowLimit)
	}
	if c.Guard.DefaultRowLimit > c.Guard.MaxRowLimit {
		return fmt.Errorf("default_row_limit %d exceeds max_row_limit %d",
			c.Guard.DefaultRowLimit, c.Guard.MaxRowLimit)
	}
	if c.Database.MaxConnections <= 0 {
		return fmt.Errorf("max_connections must be positive, got %d", c.Database.MaxConnections)
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// AcquireTimeout returns the pool acquisition timeout as a duration.
func (c *DatabaseConfig) AcquireTimeout() time.Duration {
	return time.Duration(c.AcquireTimeoutSeconds) * time.Second
}

// StatementTimeout returns the backend statement timeout as a duration.
func (c *DatabaseConfig) StatementTimeout() time.Duration {
	return time.Duration(c.StatementTimeoutSeconds) * time.Second
}
