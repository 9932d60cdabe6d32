// Package api exposes the dashboard HTTP API.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/statusrelay/internal/api/middleware"
)

// NewRouter sets up all routes and returns the http.Handler.
func NewRouter(deps Deps) http.Handler {
	h := NewHandlers(deps)
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.MethodNotAllowed(h.MethodNotAllowed)
	r.NotFound(h.NotFound)

	// Public routes
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/ext-webhook", h.InboundWebhook)
	r.Post("/api/webhook", h.InboundWebhook)
	r.Get("/api/webhook", h.MethodNotAllowed)
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/auth/logout", h.Logout)

	r.With(middleware.SharedSecret(deps.CronSecret)).Get("/api/cron/check-blocks", h.CheckBlocks)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.JWT))

		r.Get("/api/messages", h.ListMessages)
		r.Post("/api/messages", h.SendMessage)
		r.Get("/api/incidents/{id}/sent", h.IncidentSent)
		r.Get("/api/status", h.Status)
		r.Post("/api/test-alert", h.TestAlert)
	})

	return r
}
