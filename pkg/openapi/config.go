package openapi

import (
	"fmt"
	"os"
	"strings"
)

// Config holds the metadata and mount point of the generated document.
type Config struct {
	Title       string   `toml:"title"`
	Description string   `toml:"description"`
	Path        string   `toml:"path"`
	Servers     []string `toml:"servers"`
}

// ConfigEnv maps config fields to environment variable names for override injection.
// Servers is read as a comma-separated list.
type ConfigEnv struct {
	Title       string
	Description string
	Path        string
	Servers     string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("path must start with /, got %q", c.Path)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	for dst, v := range map[*string]string{
		&c.Title:       overlay.Title,
		&c.Description: overlay.Description,
		&c.Path:        overlay.Path,
	} {
		if v != "" {
			*dst = v
		}
	}
	if overlay.Servers != nil {
		c.Servers = overlay.Servers
	}
}

// Apply copies the metadata onto spec and adds the configured servers
// after basePath.
func (c *Config) Apply(spec *Spec, basePath string) {
	spec.Info.Title = c.Title
	spec.SetDescription(c.Description)
	spec.AddServer(basePath)
	for _, s := range c.Servers {
		spec.AddServer(s)
	}
}

func (c *Config) loadDefaults() {
	if c.Title == "" {
		c.Title = "Caduceus API"
	}
	if c.Description == "" {
		c.Description = "Medical query triage with AI drafted answers and clinician review."
	}
	if c.Path == "" {
		c.Path = "/openapi.json"
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	for dst, key := range map[*string]string{
		&c.Title:       env.Title,
		&c.Description: env.Description,
		&c.Path:        env.Path,
	} {
		if key == "" {
			continue
		}
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if env.Servers == "" {
		return
	}
	if v := os.Getenv(env.Servers); v != "" {
		c.Servers = c.Servers[:0]
		for s := range strings.SplitSeq(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				c.Servers = append(c.Servers, s)
			}
		}
	}
}
