// Package config loads the service configuration from TOML files and
// CADUCEUS_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/caduceus/pkg/ai"
	"github.com/JaimeStill/caduceus/pkg/auth"
	"github.com/JaimeStill/caduceus/pkg/database"
	"github.com/JaimeStill/caduceus/pkg/events"
	"github.com/JaimeStill/caduceus/pkg/ratelimit"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvCaduceusEnv             = "CADUCEUS_ENV"
	EnvCaduceusShutdownTimeout = "CADUCEUS_SHUTDOWN_TIMEOUT"
	EnvCaduceusVersion         = "CADUCEUS_VERSION"
	EnvCaduceusLogLevel        = "CADUCEUS_LOG_LEVEL"
)

var databaseEnv = &database.Env{
	URL:             "CADUCEUS_DB_URL",
	Host:            "CADUCEUS_DB_HOST",
	Port:            "CADUCEUS_DB_PORT",
	Name:            "CADUCEUS_DB_NAME",
	User:            "CADUCEUS_DB_USER",
	Password:        "CADUCEUS_DB_PASSWORD",
	SSLMode:         "CADUCEUS_DB_SSL_MODE",
	MaxOpenConns:    "CADUCEUS_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "CADUCEUS_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "CADUCEUS_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "CADUCEUS_DB_CONN_TIMEOUT",
}

var authEnv = &auth.Env{
	Secret:     "CADUCEUS_AUTH_SECRET",
	Issuer:     "CADUCEUS_AUTH_ISSUER",
	Audience:   "CADUCEUS_AUTH_AUDIENCE",
	TokenTTL:   "CADUCEUS_AUTH_TOKEN_TTL",
	Leeway:     "CADUCEUS_AUTH_LEEWAY",
	BcryptCost: "CADUCEUS_AUTH_BCRYPT_COST",
}

var aiEnv = &ai.Env{
	Provider:       "CADUCEUS_AI_PROVIDER",
	BaseURL:        "CADUCEUS_AI_BASE_URL",
	APIKey:         "CADUCEUS_AI_API_KEY",
	Model:          "CADUCEUS_AI_MODEL",
	RequestTimeout: "CADUCEUS_AI_REQUEST_TIMEOUT",
}

var eventsEnv = &events.Env{
	Enabled:      "CADUCEUS_EVENTS_ENABLED",
	Driver:       "CADUCEUS_EVENTS_DRIVER",
	Brokers:      "CADUCEUS_EVENTS_BROKERS",
	Topic:        "CADUCEUS_EVENTS_TOPIC",
	QueueURL:     "CADUCEUS_EVENTS_QUEUE_URL",
	Region:       "CADUCEUS_EVENTS_REGION",
	Endpoint:     "CADUCEUS_EVENTS_ENDPOINT",
	WriteTimeout: "CADUCEUS_EVENTS_WRITE_TIMEOUT",
	Buffer:       "CADUCEUS_EVENTS_BUFFER",
}

var rateLimitEnv = &ratelimit.Env{
	Enabled:  "CADUCEUS_RATE_LIMIT_ENABLED",
	Addr:     "CADUCEUS_REDIS_ADDR",
	Password: "CADUCEUS_REDIS_PASSWORD",
	DB:       "CADUCEUS_REDIS_DB",
	Prefix:   "CADUCEUS_RATE_LIMIT_PREFIX",
	Limit:    "CADUCEUS_RATE_LIMIT_LIMIT",
	Window:   "CADUCEUS_RATE_LIMIT_WINDOW",
}

// Config is the root configuration for the Caduceus service.
type Config struct {
	Server          ServerConfig     `toml:"server"`
	Database        database.Config  `toml:"database"`
	Auth            auth.Config      `toml:"auth"`
	AI              ai.Config        `toml:"ai"`
	Events          events.Config    `toml:"events"`
	RateLimit       ratelimit.Config `toml:"rate_limit"`
	Generation      GenerationConfig `toml:"generation"`
	Triage          TriageConfig     `toml:"triage"`
	API             APIConfig        `toml:"api"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	Version         string           `toml:"version"`
	LogLevel        string           `toml:"log_level"`
}

// Env returns the CADUCEUS_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvCaduceusEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	var l slog.Level
	l.UnmarshalText([]byte(c.LogLevel))
	return l
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// LoadDatabase reads the same files as Load but finalizes only the database
// section, for tools that need a connection and nothing else.
func LoadDatabase() (*database.Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Database.Finalize(databaseEnv); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	return &cfg.Database, nil
}

func read() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Auth.Merge(&overlay.Auth)
	c.AI.Merge(&overlay.AI)
	c.Events.Merge(&overlay.Events)
	c.RateLimit.Merge(&overlay.RateLimit)
	c.Generation.Merge(&overlay.Generation)
	c.Triage.Merge(&overlay.Triage)
	c.API.Merge(&overlay.API)
}

// Finalize applies defaults, environment overrides and validation to every
// section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.AI.Finalize(aiEnv); err != nil {
		return fmt.Errorf("ai: %w", err)
	}
	if err := c.Events.Finalize(eventsEnv); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	if err := c.RateLimit.Finalize(rateLimitEnv); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	if err := c.Generation.Finalize(); err != nil {
		return fmt.Errorf("generation: %w", err)
	}
	if err := c.Triage.Finalize(); err != nil {
		return fmt.Errorf("triage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvCaduceusShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvCaduceusVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvCaduceusLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvCaduceusEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
