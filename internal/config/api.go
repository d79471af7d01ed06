package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/caduceus/pkg/formatting"
	"github.com/JaimeStill/caduceus/pkg/middleware"
	"github.com/JaimeStill/caduceus/pkg/openapi"
	"github.com/JaimeStill/caduceus/pkg/pagination"
)

const (
	EnvAPIBasePath    = "CADUCEUS_API_BASE_PATH"
	EnvAPIMaxBodySize = "CADUCEUS_API_MAX_BODY_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "CADUCEUS_CORS_ENABLED",
	Origins:          "CADUCEUS_CORS_ORIGINS",
	AllowedMethods:   "CADUCEUS_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "CADUCEUS_CORS_ALLOWED_HEADERS",
	ExposedHeaders:   "CADUCEUS_CORS_EXPOSED_HEADERS",
	AllowCredentials: "CADUCEUS_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "CADUCEUS_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPerPage: "CADUCEUS_PAGINATION_DEFAULT_PER_PAGE",
	MaxPerPage:     "CADUCEUS_PAGINATION_MAX_PER_PAGE",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "CADUCEUS_OPENAPI_TITLE",
	Description: "CADUCEUS_OPENAPI_DESCRIPTION",
	Path:        "CADUCEUS_OPENAPI_PATH",
	Servers:     "CADUCEUS_OPENAPI_SERVERS",
}

// APIConfig holds API routing, CORS, pagination and OpenAPI settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
	Pagination  pagination.Config     `toml:"pagination"`
	OpenAPI     openapi.Config        `toml:"openapi"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxBodySize); err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxBodySize); v != "" {
		c.MaxBodySize = v
	}
}
