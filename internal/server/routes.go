package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crisiswatch/internal/bulk"
	"crisiswatch/internal/db"
	"crisiswatch/internal/detector"
	"crisiswatch/internal/handlers/api"
	"crisiswatch/internal/middleware"
	"crisiswatch/internal/notify"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(database *db.DB, det *detector.Detector, dispatcher notify.Dispatcher, sets *bulk.SetLibrary) {
	auth := middleware.NewAuthMiddleware(s.Cfg)

	importer := bulk.NewImporter(database, sets)
	exporter := bulk.NewExporter(database)

	detectHandler := api.NewDetectHandler(database, s.Cfg, det, dispatcher)
	keywordHandler := api.NewKeywordHandler(database, s.Cfg)
	bulkHandler := api.NewBulkHandler(database, importer, exporter, sets)
	statsHandler := api.NewStatsHandler(database)
	healthHandler := api.NewHealthHandler(database)

	s.App.Get("/health", healthHandler.Check)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Detection routes
	s.App.Post("/api/detect", detectHandler.Detect)
	s.App.Post("/api/detect/test", detectHandler.Test)

	// Keyword CRUD routes (admin only)
	s.App.Get("/api/keywords", auth.RequireAdmin, keywordHandler.List)
	s.App.Post("/api/keywords", auth.RequireAdmin, keywordHandler.Create)

	// Bulk routes (admin only) - static paths must precede /:id
	s.App.Post("/api/keywords/bulk", auth.RequireAdmin, bulkHandler.Action)
	s.App.Post("/api/keywords/import", auth.RequireAdmin, bulkHandler.ImportSet)
	s.App.Post("/api/keywords/import/csv", auth.RequireAdmin, bulkHandler.ImportCSV)
	s.App.Get("/api/keywords/export", auth.RequireAdmin, bulkHandler.Export)
	s.App.Get("/api/keywords/sets", auth.RequireAdmin, bulkHandler.ListSets)

	s.App.Get("/api/keywords/:id", auth.RequireAdmin, keywordHandler.Get)
	s.App.Put("/api/keywords/:id", auth.RequireAdmin, keywordHandler.Update)
	s.App.Delete("/api/keywords/:id", auth.RequireAdmin, keywordHandler.Delete)

	s.App.Get("/api/categories", auth.RequireAdmin, keywordHandler.ListCategories)
	s.App.Get("/api/stats", auth.RequireAdmin, statsHandler.Stats)
}
