// Package module mounts self-contained HTTP surfaces under a path prefix.
// Each Module strips its prefix and runs its own middleware stack around an
// inner handler, so a module can be built and tested without knowing where
// it will be mounted.
package module

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/JaimeStill/caduceus/pkg/middleware"
)

// Module serves requests under a single-level prefix such as "/api".
// Middleware must be registered with Use before the first request; the
// stack is composed once.
type Module struct {
	prefix     string
	inner      http.Handler
	middleware middleware.System

	once    sync.Once
	handler http.Handler
}

// New creates a Module. It panics if prefix is not a single-level path.
func New(prefix string, inner http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		inner:      inner,
		middleware: middleware.New(),
	}
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use adds middleware to the module's stack. Middleware added first runs first.
func (m *Module) Use(mw ...middleware.Func) {
	m.middleware.Use(mw...)
}

// Handler returns the inner handler wrapped with the module's middleware.
// Paths it receives are already relative to the prefix.
func (m *Module) Handler() http.Handler {
	m.once.Do(func() {
		m.handler = m.middleware.Apply(m.inner)
	})
	return m.handler
}

// Serve strips the prefix from the request path and dispatches to Handler.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.Handler().ServeHTTP(w, m.strip(req))
}

// strip returns a shallow copy of req addressed relative to the prefix.
func (m *Module) strip(req *http.Request) *http.Request {
	r := new(http.Request)
	*r = *req

	u := *req.URL
	u.Path = relative(req.URL.Path, m.prefix)
	if req.URL.RawPath != "" {
		u.RawPath = relative(req.URL.RawPath, m.prefix)
	}
	r.URL = &u
	return r
}

func relative(path, prefix string) string {
	rest := strings.TrimPrefix(path, prefix)
	if rest == "" {
		return "/"
	}
	return rest
}

var errPrefix = errors.New("invalid module prefix")

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("%w: empty", errPrefix)
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("%w: %q must start with /", errPrefix, prefix)
	case len(prefix) == 1 || strings.Count(prefix, "/") != 1:
		return fmt.Errorf("%w: %q must be a single path segment", errPrefix, prefix)
	}
	return nil
}
