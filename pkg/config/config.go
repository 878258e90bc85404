package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultConfigPath is the YAML file Load reads when it exists.
const DefaultConfigPath = "config.yaml"

// Config holds all configuration for the insight engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (API keys, passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	LLM     LLMConfig     `yaml:"llm"`
	Groq    GroqConfig    `yaml:"groq"`
	Claude  ClaudeConfig  `yaml:"claude"`
	Redis   RedisConfig   `yaml:"redis"`
	Cache   CacheConfig   `yaml:"cache"`
	Breaker BreakerConfig `yaml:"breaker"`
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultGroqModel is used when no model is configured for Groq.
const DefaultGroqModel = "llama-3.1-70b-versatile"

// LLMConfig selects the model provider and the generation parameters.
type LLMConfig struct {
	// Provider is "groq" or "claude".
	Provider    string  `yaml:"provider" env:"AI_PROVIDER" env-default:"groq"`
	Model       string  `yaml:"model" env:"AI_MODEL" env-default:""` // Empty uses the provider default
	MaxTokens   int     `yaml:"max_tokens" env:"AI_MAX_TOKENS" env-default:"2000"`
	Temperature float64 `yaml:"temperature" env:"AI_TEMPERATURE" env-default:"0.7"`

	// TimeoutSeconds bounds a single provider call.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"AI_TIMEOUT_SECONDS" env-default:"60"`

	Retry RetryConfig `yaml:"retry"`
}

// ModelName returns the configured model, or the Groq default for Groq.
// For Claude an empty result lets the client pick its own default.
func (c *LLMConfig) ModelName() string {
	if c.Model == "" && c.Provider == "groq" {
		return DefaultGroqModel
	}
	return c.Model
}

// Timeout returns TimeoutSeconds as a duration.
func (c *LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryConfig controls backoff for retryable provider failures.
type RetryConfig struct {
	MaxAttempts         int `yaml:"max_attempts" env:"AI_RETRY_MAX_ATTEMPTS" env-default:"3"`
	InitialDelaySeconds int `yaml:"initial_delay_seconds" env:"AI_RETRY_INITIAL_DELAY_SECONDS" env-default:"2"`
	MaxDelaySeconds     int `yaml:"max_delay_seconds" env:"AI_RETRY_MAX_DELAY_SECONDS" env-default:"10"`
}

// GroqConfig holds the Groq (OpenAI-compatible) endpoint settings.
type GroqConfig struct {
	BaseURL string `yaml:"base_url" env:"GROQ_BASE_URL" env-default:"https://api.groq.com/openai/v1"`
	APIKey  string `yaml:"-" env:"GROQ_API_KEY"` // Secret - not in YAML
}

// ClaudeConfig holds the Anthropic settings.
type ClaudeConfig struct {
	APIKey string `yaml:"-" env:"CLAUDE_API_KEY"` // Secret - not in YAML
}

// RedisConfig holds Redis connection settings. An empty host disables Redis
// and the in-memory cache is used instead.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
}

// Addr returns host:port with the host resolved for Docker.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", ResolveHostForDocker(c.Host), c.Port)
}

// CacheConfig controls insight caching.
type CacheConfig struct {
	TTLSeconds int    `yaml:"ttl_seconds" env:"CACHE_TTL" env-default:"86400"`
	Prefix     string `yaml:"prefix" env:"CACHE_PREFIX" env-default:"ai_insights:"`

	// MemorySize is the entry limit of the fallback in-process cache.
	MemorySize int `yaml:"memory_size" env:"CACHE_MEMORY_SIZE" env-default:"1024"`
}

// TTL returns TTLSeconds as a duration.
func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// BreakerConfig configures the provider circuit breaker. A zero threshold
// disables it.
type BreakerConfig struct {
	Threshold         int `yaml:"threshold" env:"AI_BREAKER_THRESHOLD" env-default:"5"`
	ResetAfterSeconds int `yaml:"reset_after_seconds" env:"AI_BREAKER_RESET_AFTER_SECONDS" env-default:"30"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from path (config.yaml when empty) with environment
// variable overrides. A .env file in the working directory is applied to the
// environment first. A missing YAML file is not an error: defaults and the
// environment are used.
func Load(path, version string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	// Existing environment variables win over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{Version: version}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case "groq", "claude":
	default:
		return fmt.Errorf("llm.provider must be groq or claude, got %q", c.LLM.Provider)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}
	if c.LLM.Retry.MaxAttempts < 1 {
		return fmt.Errorf("llm.retry.max_attempts must be at least 1")
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be positive")
	}
	return nil
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	if c.LLM.Provider == "claude" {
		return c.Claude.APIKey
	}
	return c.Groq.APIKey
}
