// Package pagination windows ordered result sets into pages and carries the
// page request and result shapes shared by list endpoints.
package pagination

import (
	"errors"
	"os"
	"strconv"
)

// Config bounds the per_page a client may request.
type Config struct {
	DefaultPerPage int `toml:"default_per_page"`
	MaxPerPage     int `toml:"max_per_page"`
}

// ConfigEnv names the environment variables that override Config.
type ConfigEnv struct {
	DefaultPerPage string
	MaxPerPage     string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.DefaultPerPage != 0 {
		c.DefaultPerPage = overlay.DefaultPerPage
	}
	if overlay.MaxPerPage != 0 {
		c.MaxPerPage = overlay.MaxPerPage
	}
}

func (c *Config) loadDefaults() {
	if c.DefaultPerPage <= 0 {
		c.DefaultPerPage = 10
	}
	if c.MaxPerPage <= 0 {
		c.MaxPerPage = 100
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	setInt(&c.DefaultPerPage, env.DefaultPerPage)
	setInt(&c.MaxPerPage, env.MaxPerPage)
}

func (c *Config) validate() error {
	switch {
	case c.DefaultPerPage < 1:
		return errors.New("default_per_page must be positive")
	case c.MaxPerPage < 1:
		return errors.New("max_per_page must be positive")
	case c.DefaultPerPage > c.MaxPerPage:
		return errors.New("default_per_page cannot exceed max_per_page")
	}
	return nil
}

func setInt(dst *int, key string) {
	if key == "" {
		return
	}
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = n
	}
}
