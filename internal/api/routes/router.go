package routes

import (
	"net/http"

	"github.com/zatekoja/Referralnetworkdesign/backend/internal/api/handlers"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/api/middleware"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	assignmentHandler *handlers.AssignmentHandler
	opsHandler        *handlers.OpsHandler
	locationHandler   *handlers.LocationHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	assignmentHandler *handlers.AssignmentHandler,
	opsHandler *handlers.OpsHandler,
	locationHandler *handlers.LocationHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		assignmentHandler: assignmentHandler,
		opsHandler:        opsHandler,
		locationHandler:   locationHandler,
		metrics:           metrics,
	}
}

// Setup registers all routes
func (r *Router) Setup() {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.mux.HandleFunc("POST /api/assignments", r.assignmentHandler.AssignLead)

	r.mux.HandleFunc("POST /api/ops/rebalance", r.opsHandler.Rebalance)
	r.mux.HandleFunc("GET /api/ops/capacity-warnings", r.opsHandler.CapacityWarnings)
	r.mux.HandleFunc("GET /api/ops/utilization", r.opsHandler.Utilization)
	r.mux.HandleFunc("GET /api/ops/location-cache/stats", r.opsHandler.CacheStats)
	r.mux.HandleFunc("POST /api/ops/location-cache/evict", r.opsHandler.EvictExpired)

	r.mux.HandleFunc("GET /api/locations/{cep}", r.locationHandler.ResolveLocation)
	r.mux.HandleFunc("POST /api/locations/batch", r.locationHandler.ResolveBatch)
}

// Handler returns the fully wrapped HTTP handler
func (r *Router) Handler() http.Handler {
	var handler http.Handler = r.mux
	handler = middleware.MetricsMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)
	return handler
}
