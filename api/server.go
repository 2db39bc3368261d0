/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the main application frontend

ROUTE GROUPS:
  /api/queue/*         Backlog and recalculation
  /api/estimates       Delivery quotes
  /api/capabilities/*  Product scheduling parameters
  /api/orders/*        Customer order delivery estimates
  /api/config          Active scheduling configuration

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/queue", func(r chi.Router) {
			r.Get("/", h.ListQueue)
			r.Post("/", h.EnqueueWorkOrder)
			r.Post("/recalculate", h.RecalculateQueue)
			r.Post("/{id}/status", h.UpdateWorkOrderStatus)
		})

		r.Post("/estimates", h.CreateEstimate)

		r.Route("/capabilities", func(r chi.Router) {
			r.Get("/", h.ListCapabilities)
			r.Put("/{productID}", h.UpsertCapability)
		})

		r.Get("/orders/{id}", h.GetCustomerOrder)
		r.Get("/config", h.GetConfig)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
