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
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/stores/*        Store management, targets, run history
  /api/profiles/*      Salesperson management
  /api/goals/*         Goal row configuration
  /api/sales/*         Sale recording and exclusion
  /api/bonuses/*       Bonus definitions
  /api/eligibility/*   On-demand eligibility checks
  /health              Liveness probe

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

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
		// Store routes
		r.Route("/stores", func(r chi.Router) {
			r.Get("/", h.ListStores)
			r.Post("/", h.CreateStore)
			r.Get("/{id}/profiles", h.ListProfiles)
			r.Get("/{id}/goals", h.ListGoals)
			r.Get("/{id}/targets/daily", h.GetDailyTarget)
			r.Get("/{id}/targets/weekly", h.GetWeeklyTarget)
			r.Get("/{id}/eligibility/runs", h.ListEligibilityRuns)
		})

		// Profile routes
		r.Route("/profiles", func(r chi.Router) {
			r.Post("/", h.CreateProfile)
		})

		// Goal routes
		r.Route("/goals", func(r chi.Router) {
			r.Post("/", h.SaveGoal)
			r.Get("/{id}", h.GetGoal)
		})

		// Sale routes
		r.Route("/sales", func(r chi.Router) {
			r.Post("/", h.RecordSale)
			r.Delete("/{id}", h.ExcludeSale)
		})

		// Bonus routes
		r.Route("/bonuses", func(r chi.Router) {
			r.Get("/", h.ListBonuses)
			r.Post("/", h.SaveBonus)
		})

		// Eligibility routes
		r.Route("/eligibility", func(r chi.Router) {
			r.Post("/check", h.CheckEligibility)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
