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
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// WebSocket upgrade. Browsers cannot set an Authorization header
		// on upgrade requests, so auth is a single-use ticket issued by
		// the authenticated /auth/ws-ticket endpoint.
		r.Get("/ws", s.handleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// WS ticket requires authentication
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			// Action vocabulary for UI rendering
			r.Get("/actions", s.handleListActions)

			// Entry endpoints
			r.Route("/entries", func(r chi.Router) {
				r.Get("/", s.handleListEntries)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetEntry)
					r.Delete("/", s.handleDeleteEntry)
					r.Post("/reconfigure", s.handleStartReconfigure)
					r.Get("/actions", s.handleActionResults)
					r.Post("/actions/{action}", s.handleDispatchAction)
				})
			})

			// Provisioning flow endpoints
			r.Route("/flows", func(r chi.Router) {
				r.Post("/", s.handleStartFlow)

				r.Route("/{flowID}", func(r chi.Router) {
					r.Post("/mode", s.handleSubmitMode)
					r.Post("/manual", s.handleSubmitManual)
					r.Post("/database", s.handleSubmitDatabase)
					r.Post("/doors", s.handleSubmitDoors)
					r.Post("/reconfigure", s.handleSubmitReconfigure)
				})
			})
		})
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
