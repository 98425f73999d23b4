/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:   Unique ID per request for tracing
  2. Logger:      Request logging
  3. Recoverer:   Panic recovery (500 instead of crash)
  4. CORS:        Cross-origin requests for the frontend
  5. instrument:  Prometheus request counters and latency histograms

ROUTE GROUPS (all under /api require a valid bearer token):
  /api/payments/*            Payment and incentive lifecycle
  /api/incentives            Incentive listing
  /api/whatsapp/*            Recurring-billing customers and due lists
  /api/calls/*               Daily call activity
  /api/analytics/*           Aggregated reporting
  /api/users/*               User profile and provisioning
  /healthz, /metrics         Unauthenticated operational endpoints

SEE ALSO:
  - handlers.go: Handler implementations
  - middleware.go: Authentication and capability gates
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vantage/sales-tracker/auth"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, tm *auth.TokenManager, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(instrument)

	// Operational endpoints, no auth.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(tm))

		// Payment routes
		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.With(RequireCapability(auth.CapWriteOwnRecords)).Post("/", h.CreatePayment)
			r.With(RequireCapability(auth.CapEditPayments)).Put("/{id}", h.UpdatePayment)
			r.With(RequireCapability(auth.CapDeletePayments)).Delete("/{id}", h.DeletePayment)
		})

		// Incentive routes
		r.Get("/incentives", h.ListIncentives)

		// WhatsApp recurring-billing routes
		r.Route("/whatsapp", func(r chi.Router) {
			r.Get("/due", h.ListDueCustomers)
			r.Route("/customers", func(r chi.Router) {
				r.With(RequireCapability(auth.CapManageRecurring)).Post("/", h.UpsertWhatsAppCustomer)
				r.Get("/{mobile}/payments", h.ListMonthlyPayments)
			})
			r.With(RequireCapability(auth.CapManageRecurring)).Post("/monthly-payments", h.RecordMonthlyPayment)
			r.Get("/reminder-runs", h.ListReminderRuns)
		})

		// Call activity routes
		r.Route("/calls", func(r chi.Router) {
			r.Get("/", h.ListCallEntries)
			r.With(RequireCapability(auth.CapWriteOwnRecords)).Post("/", h.UpsertCallEntry)
		})

		// Analytics routes
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/overview", h.Overview)
			r.Get("/top-customers", h.TopCustomers)
		})

		// User routes
		r.Route("/users", func(r chi.Router) {
			r.Get("/me", h.GetMe)
			r.With(RequireCapability(auth.CapManageUsers)).Post("/", h.CreateUser)
		})
	})

	return r
}
