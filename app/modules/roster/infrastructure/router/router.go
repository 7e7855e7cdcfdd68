package rosterrouter

import (
	"net/http"

	rosterhandlers "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/infrastructure/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter mounts the roster API and the metrics endpoint.
func NewRouter(h *rosterhandlers.RosterHandlers, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.HandleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/players", func(r chi.Router) {
		r.Get("/{id}", h.HandleGetPlayer)
		r.Get("/{id}/history", h.HandlePlayerHistory)
	})
	r.Get("/fuzzy-matches", h.HandleFuzzyMatches)
	r.Get("/stats", h.HandleStats)
	r.Post("/resolve", h.HandleResolve)
	return r
}
