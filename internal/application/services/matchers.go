package services

import (
	"context"

	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/entities"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/repositories"
	"github.com/zatekoja/Referralnetworkdesign/backend/pkg/utils"
)

// LeadLocation is the parsed form of a lead's raw location. PostalCode is
// digits-only and empty when the raw input was free text; City and State are
// filled from the input or from postal-code resolution.
type LeadLocation struct {
	PostalCode string
	City       string
	State      string
}

// Matcher is one tier of the provider selection hierarchy. Tiers are
// evaluated in priority order and the first non-empty candidate set wins.
type Matcher interface {
	// Name identifies the tier in logs and results
	Name() string

	// Match returns the active providers satisfying this tier's criteria
	Match(ctx context.Context, location LeadLocation) ([]*entities.Provider, error)
}

// DefaultMatchers returns the selection hierarchy in priority order:
// exact postal code, postal prefix, city+state, state only.
func DefaultMatchers(repo repositories.ProviderRepository) []Matcher {
	return []Matcher{
		&ExactPostalMatcher{repo: repo},
		&PostalPrefixMatcher{repo: repo},
		&CityStateMatcher{repo: repo},
		&StateMatcher{repo: repo},
	}
}

// ExactPostalMatcher matches providers whose postal code equals the lead's exactly
type ExactPostalMatcher struct {
	repo repositories.ProviderRepository
}

func (m *ExactPostalMatcher) Name() string { return "exact_postal" }

func (m *ExactPostalMatcher) Match(ctx context.Context, location LeadLocation) ([]*entities.Provider, error) {
	if location.PostalCode == "" {
		return nil, nil
	}
	return m.repo.ListActive(ctx, repositories.ProviderMatch{PostalCode: location.PostalCode})
}

// PostalPrefixMatcher matches providers sharing the lead's 5-digit postal region
type PostalPrefixMatcher struct {
	repo repositories.ProviderRepository
}

func (m *PostalPrefixMatcher) Name() string { return "postal_prefix" }

func (m *PostalPrefixMatcher) Match(ctx context.Context, location LeadLocation) ([]*entities.Provider, error) {
	if location.PostalCode == "" {
		return nil, nil
	}
	return m.repo.ListActive(ctx, repositories.ProviderMatch{PostalPrefix: utils.PostalPrefix(location.PostalCode)})
}

// CityStateMatcher matches providers in the lead's city and state
type CityStateMatcher struct {
	repo repositories.ProviderRepository
}

func (m *CityStateMatcher) Name() string { return "city_state" }

func (m *CityStateMatcher) Match(ctx context.Context, location LeadLocation) ([]*entities.Provider, error) {
	if location.City == "" || location.City == entities.DegradedCity || location.State == "" {
		return nil, nil
	}
	return m.repo.ListActive(ctx, repositories.ProviderMatch{City: location.City, State: location.State})
}

// StateMatcher matches providers in the lead's state, regardless of city
type StateMatcher struct {
	repo repositories.ProviderRepository
}

func (m *StateMatcher) Name() string { return "state" }

func (m *StateMatcher) Match(ctx context.Context, location LeadLocation) ([]*entities.Provider, error) {
	if location.State == "" {
		return nil, nil
	}
	return m.repo.ListActive(ctx, repositories.ProviderMatch{State: location.State})
}
