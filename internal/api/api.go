// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/initra/procflow/internal/config"
	"github.com/initra/procflow/internal/infrastructure"
	"github.com/initra/procflow/pkg/middleware"
	"github.com/initra/procflow/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Every route sits behind the authenticator so handlers can rely on a
// resolved actor in the request context.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	auth, err := middleware.NewAuthenticator(
		infra.Lifecycle.Context(),
		&cfg.Auth,
		runtime.Logger,
	)
	if err != nil {
		return nil, fmt.Errorf("authenticator init failed: %w", err)
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(auth.Middleware())
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
