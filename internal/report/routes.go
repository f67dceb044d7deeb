package report

import (
	"net/http"

	"github.com/EmpoweredVote/county-health-etl/internal/config"
	"github.com/EmpoweredVote/county-health-etl/internal/middleware"
	"github.com/EmpoweredVote/county-health-etl/internal/sink"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes mounts the report endpoints behind CORS and rate limiting.
func SetupRoutes(h *Handlers, cfg config.ReportConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.ServerTiming)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit, cfg.Burst))

		r.Get("/summary", h.Summary)
		r.Get("/counties", h.ListCounties)
		r.Get("/counties/{fips}", h.GetCounty)
	})

	return r
}

var _ Reader = (*sink.Store)(nil)
