package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"valentine/internal/config"
	"valentine/internal/db"
	"valentine/internal/flow"
	"valentine/internal/handlers"
	"valentine/internal/handlers/api"
	"valentine/internal/middleware"
	"valentine/internal/share"
	"valentine/internal/telemetry"
)

// RegisterRoutes registers all application routes. database is nil unless
// telemetry is stored in Postgres; recorder may be disabled.
func (s *Server) RegisterRoutes(database *db.DB, recorder *telemetry.Recorder, content *config.Content) error {
	var pinger handlers.Pinger
	if database != nil {
		pinger = database
	}

	// Initialize handlers
	pageHandler, err := handlers.NewPageHandler(s.Cfg, content, recorder.Enabled())
	if err != nil {
		return err
	}
	probeHandler := handlers.NewProbeHandler(pinger)
	linkHandler := api.NewLinkHandler(recorder, s.Cfg, content)
	sessionHandler := api.NewSessionHandler(recorder)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// JSON API
	s.App.Post("/api/links", linkHandler.Create)
	s.App.Get("/api/view", api.View)
	s.App.Post("/api/sessions/:id/opened", middleware.RequireSession, sessionHandler.Opened)
	s.App.Post("/api/sessions/:id/missing-name", middleware.RequireSession, sessionHandler.MissingName)
	s.App.Post("/api/sessions/:id/accepted", middleware.RequireSession, sessionHandler.Accepted)
	s.App.Post("/api/sessions/:id/declined", middleware.RequireSession, sessionHandler.Declined)
	s.App.Get(share.QRPath, api.QRCode)

	// App shell; the browser picks the screen
	s.App.Get(flow.HomePath, pageHandler.Index)
	s.App.Get(flow.CreatePath, pageHandler.Index)

	return nil
}
