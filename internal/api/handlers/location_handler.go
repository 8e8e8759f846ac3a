package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/entities"
)

// Resolver resolves raw postal codes into canonical location descriptors
type Resolver interface {
	Resolve(ctx context.Context, rawPostalCode string) *entities.Location
	ResolveMany(ctx context.Context, postalCodes []string) map[string]*entities.Location
}

// LocationHandler handles postal-code resolution HTTP requests
type LocationHandler struct {
	resolver Resolver
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(resolver Resolver) *LocationHandler {
	return &LocationHandler{
		resolver: resolver,
	}
}

// ResolveLocation handles GET /api/locations/{cep}
func (h *LocationHandler) ResolveLocation(w http.ResponseWriter, r *http.Request) {
	cep := r.PathValue("cep")
	if cep == "" {
		respondWithError(w, http.StatusBadRequest, "postal code is required")
		return
	}

	location := h.resolver.Resolve(r.Context(), cep)
	respondWithJSON(w, http.StatusOK, location)
}

type batchResolveRequest struct {
	PostalCodes []string `json:"postal_codes"`
}

// ResolveBatch handles POST /api/locations/batch
func (h *LocationHandler) ResolveBatch(w http.ResponseWriter, r *http.Request) {
	var req batchResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.PostalCodes) == 0 {
		respondWithError(w, http.StatusBadRequest, "postal_codes is required")
		return
	}

	locations := h.resolver.ResolveMany(r.Context(), req.PostalCodes)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"locations": locations,
		"count":     len(locations),
	})
}
