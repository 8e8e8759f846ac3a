package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/application/services"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/entities"
)

func activeProvider(id, city, state, postalCode string, capacity int, enrolled time.Time) *entities.Provider {
	return &entities.Provider{
		ID:              id,
		Name:            "Dr. " + id,
		City:            city,
		State:           state,
		PostalCode:      postalCode,
		MonthlyCapacity: capacity,
		Status:          entities.ProviderStatusActive,
		EnrolledAt:      enrolled,
	}
}

func TestDefaultMatchersOrder(t *testing.T) {
	matchers := services.DefaultMatchers(newMemProviderRepo())

	require.Len(t, matchers, 4)
	assert.Equal(t, "exact_postal", matchers[0].Name())
	assert.Equal(t, "postal_prefix", matchers[1].Name())
	assert.Equal(t, "city_state", matchers[2].Name())
	assert.Equal(t, "state", matchers[3].Name())
}

func TestExactPostalMatcher(t *testing.T) {
	enrolled := time.Now()
	repo := newMemProviderRepo(
		activeProvider("p1", "São Paulo", "SP", "01310-100", 10, enrolled),
		activeProvider("p2", "São Paulo", "SP", "01311-200", 10, enrolled),
	)
	matchers := services.DefaultMatchers(repo)

	got, err := matchers[0].Match(context.Background(), services.LeadLocation{PostalCode: "01310100"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)

	got, err = matchers[0].Match(context.Background(), services.LeadLocation{City: "São Paulo", State: "SP"})
	require.NoError(t, err)
	assert.Empty(t, got, "exact tier is postal-code only")
}

func TestPostalPrefixMatcher(t *testing.T) {
	enrolled := time.Now()
	repo := newMemProviderRepo(
		activeProvider("p1", "São Paulo", "SP", "01310-900", 10, enrolled),
		activeProvider("p2", "São Paulo", "SP", "04500-000", 10, enrolled),
	)
	matchers := services.DefaultMatchers(repo)

	got, err := matchers[1].Match(context.Background(), services.LeadLocation{PostalCode: "01310100"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
}

func TestCityStateMatcherSkipsDegradedCity(t *testing.T) {
	repo := newMemProviderRepo(
		activeProvider("p1", "São Paulo", "SP", "01310-900", 10, time.Now()),
	)
	matchers := services.DefaultMatchers(repo)

	got, err := matchers[2].Match(context.Background(), services.LeadLocation{City: entities.DegradedCity, State: "SP"})
	require.NoError(t, err)
	assert.Empty(t, got, "placeholder city must never match a real one")

	got, err = matchers[2].Match(context.Background(), services.LeadLocation{City: "são paulo", State: "SP"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
}

func TestStateMatcher(t *testing.T) {
	repo := newMemProviderRepo(
		activeProvider("p1", "Campinas", "SP", "13010-000", 10, time.Now()),
		activeProvider("p2", "Rio de Janeiro", "RJ", "20040-020", 10, time.Now()),
	)
	matchers := services.DefaultMatchers(repo)

	got, err := matchers[3].Match(context.Background(), services.LeadLocation{City: entities.DegradedCity, State: "SP"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)

	got, err = matchers[3].Match(context.Background(), services.LeadLocation{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMatchersIgnoreInactiveProviders(t *testing.T) {
	suspended := activeProvider("p1", "São Paulo", "SP", "01310-100", 10, time.Now())
	suspended.Status = entities.ProviderStatusSuspended
	repo := newMemProviderRepo(suspended)
	matchers := services.DefaultMatchers(repo)

	for _, matcher := range matchers {
		got, err := matcher.Match(context.Background(), services.LeadLocation{
			PostalCode: "01310100",
			City:       "São Paulo",
			State:      "SP",
		})
		require.NoError(t, err)
		assert.Empty(t, got, "tier %s must skip non-active providers", matcher.Name())
	}
}
