package api

import (
	"net/http"

	"github.com/filmpulse/arbiter/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	routes.Register(
		mux,
		domain.Moderation.Handler().Routes(),
	)
}
