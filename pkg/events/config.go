package events

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Supported drivers.
const (
	DriverKafka = "kafka"
	DriverSQS   = "sqs"
)

// Config selects the broker for event publishing. Brokers and Topic apply
// to Kafka; QueueURL, Region and Endpoint apply to SQS.
type Config struct {
	Enabled      bool     `toml:"enabled"`
	Driver       string   `toml:"driver"`
	Brokers      []string `toml:"brokers"`
	Topic        string   `toml:"topic"`
	QueueURL     string   `toml:"queue_url"`
	Region       string   `toml:"region"`
	Endpoint     string   `toml:"endpoint"`
	WriteTimeout string   `toml:"write_timeout"`
	Buffer       int      `toml:"buffer"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled      string
	Driver       string
	Brokers      string
	Topic        string
	QueueURL     string
	Region       string
	Endpoint     string
	WriteTimeout string
	Buffer       string
}

// WriteTimeoutDuration returns WriteTimeout as a time.Duration.
func (c *Config) WriteTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields from overlay. Enabled always applies.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled
	if overlay.Brokers != nil {
		c.Brokers = overlay.Brokers
	}
	if overlay.Buffer > 0 {
		c.Buffer = overlay.Buffer
	}
	for dst, v := range c.strings(overlay) {
		if v != "" {
			*dst = v
		}
	}
}

func (c *Config) strings(src *Config) map[*string]string {
	return map[*string]string{
		&c.Driver:       src.Driver,
		&c.Topic:        src.Topic,
		&c.QueueURL:     src.QueueURL,
		&c.Region:       src.Region,
		&c.Endpoint:     src.Endpoint,
		&c.WriteTimeout: src.WriteTimeout,
	}
}

func (c *Config) loadDefaults() {
	if c.Driver == "" {
		c.Driver = DriverKafka
	}
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"localhost:9092"}
	}
	if c.Topic == "" {
		c.Topic = "caduceus.queries"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "10s"
	}
	if c.Buffer == 0 {
		c.Buffer = 256
	}
}

func (c *Config) loadEnv(env *Env) {
	if v, err := strconv.ParseBool(getenv(env.Enabled)); err == nil {
		c.Enabled = v
	}
	if v, err := strconv.Atoi(getenv(env.Buffer)); err == nil {
		c.Buffer = v
	}

	if v := getenv(env.Brokers); v != "" {
		c.Brokers = c.Brokers[:0]
		for b := range strings.SplitSeq(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				c.Brokers = append(c.Brokers, b)
			}
		}
	}

	for dst, key := range map[*string]string{
		&c.Driver:       env.Driver,
		&c.Topic:        env.Topic,
		&c.QueueURL:     env.QueueURL,
		&c.Region:       env.Region,
		&c.Endpoint:     env.Endpoint,
		&c.WriteTimeout: env.WriteTimeout,
	} {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
}

func (c *Config) validate() error {
	if !slices.Contains([]string{DriverKafka, DriverSQS}, c.Driver) {
		return fmt.Errorf("driver must be kafka or sqs, got %q", c.Driver)
	}
	if _, err := time.ParseDuration(c.WriteTimeout); err != nil {
		return fmt.Errorf("invalid write_timeout: %w", err)
	}
	if c.Buffer < 1 {
		return fmt.Errorf("buffer must be positive")
	}
	if !c.Enabled {
		return nil
	}

	switch c.Driver {
	case DriverKafka:
		if len(c.Brokers) == 0 {
			return fmt.Errorf("brokers required when enabled")
		}
	case DriverSQS:
		if c.QueueURL == "" {
			return fmt.Errorf("queue_url required for the sqs driver")
		}
	}
	return nil
}

func getenv(key string) string {
	if key == "" {
		return ""
	}
	return os.Getenv(key)
}
