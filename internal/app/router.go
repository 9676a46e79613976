package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/abed1srour/POS-backend/internal/auth"
	"github.com/abed1srour/POS-backend/internal/catalog"
	"github.com/abed1srour/POS-backend/internal/customers"
	"github.com/abed1srour/POS-backend/internal/employees"
	"github.com/abed1srour/POS-backend/internal/observability"
	"github.com/abed1srour/POS-backend/internal/orders"
	"github.com/abed1srour/POS-backend/internal/payments"
	"github.com/abed1srour/POS-backend/internal/procurement"
	"github.com/abed1srour/POS-backend/internal/refunds"
	"github.com/abed1srour/POS-backend/internal/suppliers"
	"github.com/abed1srour/POS-backend/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	AuthService        *auth.Service
	AuthHandler        *auth.Handler
	CatalogHandler     *catalog.Handler
	CustomersHandler   *customers.Handler
	SuppliersHandler   *suppliers.Handler
	EmployeesHandler   *employees.Handler
	OrdersHandler      *orders.Handler
	PaymentsHandler    *payments.Handler
	ProcurementHandler *procurement.Handler
	RefundsHandler     *refunds.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router for the API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Login and refresh get a tighter per-IP limit than the rest of the API.
		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
			params.AuthHandler.MountPublicRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(params.AuthService))
			params.AuthHandler.MountProtectedRoutes(r)
			params.CatalogHandler.MountRoutes(r)
			params.CustomersHandler.MountRoutes(r)
			params.SuppliersHandler.MountRoutes(r)
			params.EmployeesHandler.MountRoutes(r)
			params.OrdersHandler.MountRoutes(r)
			params.PaymentsHandler.MountRoutes(r)
			params.ProcurementHandler.MountRoutes(r)
			params.RefundsHandler.MountRoutes(r)
			if params.JobHandler != nil {
				r.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	return r
}
