package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/entities"
)

type stubResolver struct {
	locations map[string]*entities.Location
}

func (s *stubResolver) Resolve(ctx context.Context, rawPostalCode string) *entities.Location {
	if loc, ok := s.locations[rawPostalCode]; ok {
		return loc
	}
	return &entities.Location{City: entities.DegradedCity, State: "SP", Degraded: true}
}

func (s *stubResolver) ResolveMany(ctx context.Context, postalCodes []string) map[string]*entities.Location {
	results := make(map[string]*entities.Location, len(postalCodes))
	for _, code := range postalCodes {
		results[code] = s.Resolve(ctx, code)
	}
	return results
}

func TestResolveLocation(t *testing.T) {
	resolver := &stubResolver{locations: map[string]*entities.Location{
		"01310-100": {PostalCode: "01310-100", City: "São Paulo", State: "SP"},
	}}
	handler := NewLocationHandler(resolver)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/locations/{cep}", handler.ResolveLocation)

	req := httptest.NewRequest(http.MethodGet, "/api/locations/01310-100", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var location entities.Location
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &location))
	assert.Equal(t, "São Paulo", location.City)
	assert.False(t, location.Degraded)
}

func TestResolveLocationDegraded(t *testing.T) {
	handler := NewLocationHandler(&stubResolver{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/locations/{cep}", handler.ResolveLocation)

	req := httptest.NewRequest(http.MethodGet, "/api/locations/garbage", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	// Resolution never fails; degraded descriptors are still 200s.
	assert.Equal(t, http.StatusOK, rec.Code)

	var location entities.Location
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &location))
	assert.True(t, location.Degraded)
	assert.Equal(t, entities.DegradedCity, location.City)
}

func TestResolveBatch(t *testing.T) {
	resolver := &stubResolver{locations: map[string]*entities.Location{
		"01310-100": {PostalCode: "01310-100", City: "São Paulo", State: "SP"},
	}}
	handler := NewLocationHandler(resolver)

	req := httptest.NewRequest(http.MethodPost, "/api/locations/batch",
		strings.NewReader(`{"postal_codes": ["01310-100", "bogus"]}`))
	rec := httptest.NewRecorder()

	handler.ResolveBatch(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Locations map[string]*entities.Location `json:"locations"`
		Count     int                           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.False(t, body.Locations["01310-100"].Degraded)
	assert.True(t, body.Locations["bogus"].Degraded)
}

func TestResolveBatchEmptyList(t *testing.T) {
	handler := NewLocationHandler(&stubResolver{})

	req := httptest.NewRequest(http.MethodPost, "/api/locations/batch",
		strings.NewReader(`{"postal_codes": []}`))
	rec := httptest.NewRecorder()

	handler.ResolveBatch(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
