// Package api exposes the league, schedule, and tournament services over
// HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/parkside-league/league-hub/config"
)

// NewRouter assembles the HTTP surface: the JSON API, the metrics endpoint,
// and the liveness probe.
func NewRouter(cfg config.HTTPConfig, h *Handlers, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORSMiddleware(cfg.AllowedOrigins))
	r.Use(RateLimitMiddleware(NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)))

	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/standings", func(r chi.Router) {
			r.Get("/", h.GetStandings)
			r.Get("/chart", h.GetStandingsChart)
		})

		r.Route("/league", func(r chi.Router) {
			r.Post("/workbook", h.UploadWorkbook)
			r.Post("/reload", h.ReloadLeague)
		})

		r.Route("/schedule", func(r chi.Router) {
			r.Post("/weekly", h.ComputeWeeklyPlan)
			r.Post("/rebalance", h.RebalancePlan)
		})

		r.Route("/tournament", func(r chi.Router) {
			r.Get("/", h.GetTournament)
			r.Post("/import", h.ImportTournament)
			r.Post("/group/score", h.RecordGroupScore)
			r.Post("/group/clear", h.ClearGroupScore)
			r.Post("/bracket/score", h.RecordBracketScore)
			r.Post("/bracket/clear", h.ClearBracketScore)
			r.Get("/export", h.ExportTournament)
			r.Get("/export/results", h.ExportTournamentResults)
		})
	})

	return r
}
