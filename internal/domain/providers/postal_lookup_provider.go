package providers

import (
	"context"
	"errors"
)

// ErrPostalCodeNotFound is returned when the external service has no record
// for the postal code. Callers treat every other lookup failure the same way.
var ErrPostalCodeNotFound = errors.New("postal code not found")

// PostalAddress is the raw address returned by the external postal service
type PostalAddress struct {
	PostalCode   string
	Street       string
	Neighborhood string
	City         string
	State        string
	RegionCode   string
}

// PostalLookupProvider defines the interface for the external postal-code
// service. Lookup receives a digits-only 8-digit postal code.
type PostalLookupProvider interface {
	Lookup(ctx context.Context, postalCode string) (*PostalAddress, error)
}
