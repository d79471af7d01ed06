package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvGenerationAttemptTimeout = "CADUCEUS_GENERATION_ATTEMPT_TIMEOUT"
	EnvGenerationMaxAttempts    = "CADUCEUS_GENERATION_MAX_ATTEMPTS"
	EnvGenerationConcurrency    = "CADUCEUS_GENERATION_CONCURRENCY"
	EnvGenerationRetryDelay     = "CADUCEUS_GENERATION_RETRY_DELAY"
	EnvGenerationStallAfter     = "CADUCEUS_GENERATION_STALL_AFTER"
	EnvTriageTimeout            = "CADUCEUS_TRIAGE_TIMEOUT"
)

// GenerationConfig bounds background answer generation.
type GenerationConfig struct {
	AttemptTimeout string `toml:"attempt_timeout"`
	MaxAttempts    int    `toml:"max_attempts"`
	Concurrency    int64  `toml:"concurrency"`
	RetryDelay     string `toml:"retry_delay"`
	StallAfter     string `toml:"stall_after"`
}

// AttemptTimeoutDuration returns AttemptTimeout as a time.Duration.
func (c *GenerationConfig) AttemptTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.AttemptTimeout)
	return d
}

// RetryDelayDuration returns RetryDelay as a time.Duration.
func (c *GenerationConfig) RetryDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryDelay)
	return d
}

// StallAfterDuration returns StallAfter as a time.Duration.
func (c *GenerationConfig) StallAfterDuration() time.Duration {
	d, _ := time.ParseDuration(c.StallAfter)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *GenerationConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *GenerationConfig) Merge(overlay *GenerationConfig) {
	if overlay.AttemptTimeout != "" {
		c.AttemptTimeout = overlay.AttemptTimeout
	}
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.RetryDelay != "" {
		c.RetryDelay = overlay.RetryDelay
	}
	if overlay.StallAfter != "" {
		c.StallAfter = overlay.StallAfter
	}
}

func (c *GenerationConfig) loadDefaults() {
	if c.AttemptTimeout == "" {
		c.AttemptTimeout = "90s"
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 2
	}
	if c.Concurrency == 0 {
		c.Concurrency = 4
	}
	if c.RetryDelay == "" {
		c.RetryDelay = "1s"
	}
	if c.StallAfter == "" {
		c.StallAfter = "5m"
	}
}

func (c *GenerationConfig) loadEnv() {
	if v := os.Getenv(EnvGenerationAttemptTimeout); v != "" {
		c.AttemptTimeout = v
	}
	if v := os.Getenv(EnvGenerationMaxAttempts); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAttempts = n
		}
	}
	if v := os.Getenv(EnvGenerationConcurrency); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Concurrency = n
		}
	}
	if v := os.Getenv(EnvGenerationRetryDelay); v != "" {
		c.RetryDelay = v
	}
	if v := os.Getenv(EnvGenerationStallAfter); v != "" {
		c.StallAfter = v
	}
}

func (c *GenerationConfig) validate() error {
	if c.MaxAttempts < 1 || c.MaxAttempts > 2 {
		return fmt.Errorf("max_attempts must be 1 or 2")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive")
	}
	for name, v := range map[string]string{
		"attempt_timeout": c.AttemptTimeout,
		"retry_delay":     c.RetryDelay,
		"stall_after":     c.StallAfter,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

// TriageConfig bounds the classification call made while a query is created.
type TriageConfig struct {
	Timeout string `toml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *TriageConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *TriageConfig) Finalize() error {
	if c.Timeout == "" {
		c.Timeout = "15s"
	}
	if v := os.Getenv(EnvTriageTimeout); v != "" {
		c.Timeout = v
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *TriageConfig) Merge(overlay *TriageConfig) {
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}
