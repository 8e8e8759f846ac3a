package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/Referralnetworkdesign/backend/internal/application/services"
)

// Rebalancer runs the capacity-balancing corrective process
type Rebalancer interface {
	Rebalance(ctx context.Context) (*services.RebalanceResult, error)
}

// CapacityReporter reports per-provider monthly utilization
type CapacityReporter interface {
	Utilization(ctx context.Context, monthBucket string) ([]services.ProviderUtilization, error)
	Warnings(ctx context.Context, monthBucket string) ([]services.ProviderUtilization, error)
}

// CacheMaintainer exposes the location cache maintenance operations
type CacheMaintainer interface {
	CacheStats(ctx context.Context) (*services.CacheStats, error)
	EvictExpired(ctx context.Context) (int, error)
}

// OpsHandler handles maintenance/ops trigger HTTP requests
type OpsHandler struct {
	rebalancingService Rebalancer
	capacityMonitor    CapacityReporter
	resolver           CacheMaintainer
}

// NewOpsHandler creates a new ops handler
func NewOpsHandler(
	rebalancingService Rebalancer,
	capacityMonitor CapacityReporter,
	resolver CacheMaintainer,
) *OpsHandler {
	return &OpsHandler{
		rebalancingService: rebalancingService,
		capacityMonitor:    capacityMonitor,
		resolver:           resolver,
	}
}

// Rebalance handles POST /api/ops/rebalance
func (h *OpsHandler) Rebalance(w http.ResponseWriter, r *http.Request) {
	result, err := h.rebalancingService.Rebalance(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// CapacityWarnings handles GET /api/ops/capacity-warnings?month=YYYY-MM
func (h *OpsHandler) CapacityWarnings(w http.ResponseWriter, r *http.Request) {
	warnings, err := h.capacityMonitor.Warnings(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"warnings": warnings,
		"count":    len(warnings),
	})
}

// Utilization handles GET /api/ops/utilization?month=YYYY-MM
func (h *OpsHandler) Utilization(w http.ResponseWriter, r *http.Request) {
	utilizations, err := h.capacityMonitor.Utilization(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"utilization": utilizations,
		"count":       len(utilizations),
	})
}

// CacheStats handles GET /api/ops/location-cache/stats
func (h *OpsHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.resolver.CacheStats(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

// EvictExpired handles POST /api/ops/location-cache/evict
func (h *OpsHandler) EvictExpired(w http.ResponseWriter, r *http.Request) {
	evicted, err := h.resolver.EvictExpired(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"evicted": evicted})
}
