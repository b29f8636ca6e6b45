package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"serpwatch/internal/db"
	"serpwatch/internal/handlers/api"
	"serpwatch/internal/middleware"
	"serpwatch/internal/volatility"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(database *db.DB, engine *volatility.Engine) {
	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(database)

	// Initialize handlers
	keywordHandler := api.NewKeywordHandler(database)
	snapshotHandler := api.NewSnapshotHandler(database)
	volatilityHandler := api.NewVolatilityHandler(database, engine)
	healthHandler := api.NewHealthHandler(database)

	// Operational endpoints
	s.App.Get("/healthz", healthHandler.Check)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Tenant-scoped API
	v1 := s.App.Group("/api/v1", authMiddleware.RequireProject)

	// Keyword targets
	v1.Post("/keywords", keywordHandler.Create)
	v1.Get("/keywords", keywordHandler.List)
	v1.Get("/keywords/:id", keywordHandler.Get)

	// Snapshot ingest and history
	v1.Post("/keywords/:id/snapshots", snapshotHandler.Ingest)
	v1.Get("/keywords/:id/snapshots", snapshotHandler.History)

	// Keyword-level volatility analytics
	v1.Get("/keywords/:id/volatility", volatilityHandler.Volatility)
	v1.Get("/keywords/:id/volatility/breakdown", volatilityHandler.Breakdown)
	v1.Get("/keywords/:id/volatility/spikes", volatilityHandler.Spikes)
	v1.Get("/keywords/:id/feature-transitions", volatilityHandler.Transitions)

	// Project-level aggregation and alerting
	v1.Get("/volatility/summary", volatilityHandler.Summary)
	v1.Get("/volatility/alerts", volatilityHandler.AlertFeed)
	v1.Get("/alerts", volatilityHandler.Alerts)
}
