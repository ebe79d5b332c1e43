package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rvallee/portfolio-analytics/internal/api/handlers"
	custommiddleware "github.com/rvallee/portfolio-analytics/internal/api/middleware"
	"github.com/rvallee/portfolio-analytics/internal/config"
	"github.com/rvallee/portfolio-analytics/internal/marketdata"
	"github.com/rvallee/portfolio-analytics/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	performanceService *service.PerformanceService,
	analyticsService *service.AnalyticsService,
	enrichmentService *service.EnrichmentService,
	source marketdata.Source,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		analyticsHandler := handlers.NewAnalyticsHandler(
			performanceService,
			analyticsService,
			enrichmentService,
			cfg.Market.BenchmarkSymbol,
		)
		r.Route("/analytics", func(r chi.Router) {
			r.Post("/performance", analyticsHandler.Performance)
			r.Post("/summary", analyticsHandler.Summary)
			r.Post("/compare-index", analyticsHandler.CompareIndex)
			r.Post("/recommendations", analyticsHandler.Recommendations)
			r.Post("/correlation", analyticsHandler.Correlation)
		})

		r.Route("/positions", func(r chi.Router) {
			r.Post("/enrich", analyticsHandler.EnrichPositions)
		})

		r.Route("/market", func(r chi.Router) {
			marketHandler := handlers.NewMarketHandler(source)
			r.Get("/quote/{symbol}", marketHandler.Quote)
			r.Get("/fx/{from}/{to}", marketHandler.ExchangeRate)
		})
	})

	return r
}
