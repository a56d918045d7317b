/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. Logger:     Request logging
  4. CORS:       Cross-origin requests for back-office frontends

SECURITY NOTE:
  No authentication middleware. The service is intended to sit behind the
  operator's internal gateway, which owns sessions and branch scoping.

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", h.ListRuns)
			r.Post("/", h.CreateRun)
		})

		r.Route("/configs", func(r chi.Router) {
			r.Post("/monthly", h.CreateMonthlyConfig)
			r.Post("/fees", h.CreateFeeSchedule)
		})

		r.Route("/customers/{id}/invoices/{month}", func(r chi.Router) {
			r.Get("/", h.GetInvoice)
			r.Put("/override", h.SaveOverride)
			r.Delete("/override", h.ResetOverride)
		})

		r.Route("/payroll/{month}", func(r chi.Router) {
			r.Get("/", h.GetPayroll)
			r.Put("/drivers/{id}/attendance", h.SaveDriverInput("attendance"))
			r.Put("/drivers/{id}/fuel", h.SaveDriverInput("fuel"))
			r.Put("/drivers/{id}/vehicle", h.SaveDriverInput("vehicle"))
			r.Put("/drivers/{id}/adjustments", h.SaveDriverInput("adjustments"))
		})
	})

	return r
}
