// Package api assembles the API module with all domain systems and route
// registration.
package api

import (
	"net/http"

	"github.com/filmpulse/arbiter/internal/config"
	"github.com/filmpulse/arbiter/internal/infrastructure"
	"github.com/filmpulse/arbiter/pkg/middleware"
	"github.com/filmpulse/arbiter/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The returned Domain exposes the assembled systems so callers can attach
// background workers to them.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, *Domain, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, domain, nil
}
