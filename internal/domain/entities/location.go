package entities

import (
	"time"
)

// DegradedCity is the placeholder city used when a raw location cannot be
// resolved; downstream assignment still proceeds with it.
const DegradedCity = "A definir"

// Location is the canonical descriptor derived from a postal-code lookup.
// Degraded descriptors (malformed input or failed lookup) carry the
// placeholder city and the configured default state.
type Location struct {
	PostalCode   string    `json:"postal_code"`
	Street       string    `json:"street"`
	Neighborhood string    `json:"neighborhood"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	RegionCode   string    `json:"region_code"`
	Degraded     bool      `json:"degraded"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Expired reports whether the descriptor was fetched longer than ttl ago.
func (l *Location) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(l.FetchedAt) > ttl
}
