package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Webhook called by hub automations. GET describes the accepted
		// payloads so an automation author can probe the endpoint.
		r.Post("/webhook", s.handleWebhook)
		r.Get("/webhook", s.handleWebhookInfo)

		// Read-only views
		r.Get("/printers", s.handleListPrinters)
		r.Get("/spools", s.handleListSpools)
		r.Get("/activity", s.handleListActivity)

		// Manual assignment operations
		r.Route("/spools/{id}", func(r chi.Router) {
			r.Post("/assign", s.handleAssignSpool)
			r.Post("/unassign", s.handleUnassignSpool)
		})

		// WebSocket live updates
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
