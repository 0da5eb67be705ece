package api

import (
	"net/http"

	"github.com/initra/procflow/internal/config"
	"github.com/initra/procflow/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		domain.Documents.Handler().Routes(),
		domain.Requisitions.Handler().Routes(),
		domain.Attachments.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
	)
}
