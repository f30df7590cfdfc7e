package web

import (
	"log"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-gate/internal/web/handlers"
	"github.com/kozaktomas/face-gate/internal/web/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRoutes() {
	identityHandler := handlers.NewIdentityHandler(s.service, s.metrics)
	adminHandler := handlers.NewAdminHandler(s.service, s.metrics)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	if s.metrics != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{
			ErrorLog:      log.New(os.Stderr, "metrics handler: ", log.LstdFlags),
			ErrorHandling: promhttp.HTTPErrorOnError,
		}))
	}

	// Kiosk endpoints
	s.router.Post("/login", identityHandler.Login)
	s.router.Post("/register", identityHandler.Register)

	// Store maintenance
	s.router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(s.config.Web.AdminToken))

		r.Get("/duplicates", adminHandler.Duplicates)
		r.Post("/cleanup", adminHandler.Cleanup)
		r.Get("/identities", adminHandler.Identities)
		r.Get("/attendance", adminHandler.Attendance)
	})
}
