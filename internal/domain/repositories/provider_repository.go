package repositories

import (
	"context"

	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/entities"
)

// ProviderRepository defines the interface for provider data operations
type ProviderRepository interface {
	// Create creates a new provider
	Create(ctx context.Context, provider *entities.Provider) error

	// GetByID retrieves a provider by ID
	GetByID(ctx context.Context, id string) (*entities.Provider, error)

	// Update updates a provider
	Update(ctx context.Context, provider *entities.Provider) error

	// List retrieves providers with filters
	List(ctx context.Context, filter ProviderFilter) ([]*entities.Provider, error)

	// ListActive retrieves active providers matching the given criteria.
	// Empty criteria fields are ignored; an all-empty match returns every
	// active provider.
	ListActive(ctx context.Context, match ProviderMatch) ([]*entities.Provider, error)
}

// ProviderFilter defines filters for listing providers
type ProviderFilter struct {
	Status entities.ProviderStatus
	State  string
	Limit  int
	Offset int
}

// ProviderMatch defines the location criteria used by the match tiers.
// PostalCode and PostalPrefix are digits-only.
type ProviderMatch struct {
	PostalCode   string
	PostalPrefix string
	City         string
	State        string
	ExcludeID    string
}
