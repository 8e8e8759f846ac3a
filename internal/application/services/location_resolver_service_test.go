package services_test

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/application/services"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/entities"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/providers"
)

func saoPauloAddress() *providers.PostalAddress {
	return &providers.PostalAddress{
		PostalCode:   "01310100",
		Street:       "Avenida Paulista",
		Neighborhood: "Bela Vista",
		City:         "São Paulo",
		State:        "SP",
		RegionCode:   "3550308",
	}
}

func newResolver(lookup providers.PostalLookupProvider, cache providers.CacheProvider, cfg services.ResolverConfig) *services.LocationResolverService {
	return services.NewLocationResolverService(lookup, cache, cfg, nil)
}

func seedCacheEntry(t *testing.T, cache *memCache, digits string, location *entities.Location) {
	t.Helper()
	payload, err := json.Marshal(location)
	require.NoError(t, err)
	require.NoError(t, cache.Set(context.Background(), "cep:v1:"+digits, payload, 0))
}

func TestResolveFormatsPostalCode(t *testing.T) {
	lookup := newCountingLookup().add(saoPauloAddress())
	resolver := newResolver(lookup, newMemCache(), services.ResolverConfig{})

	location := resolver.Resolve(context.Background(), "01310100")

	assert.Equal(t, "01310-100", location.PostalCode)
	assert.Equal(t, "São Paulo", location.City)
	assert.Equal(t, "SP", location.State)
	assert.Equal(t, "3550308", location.RegionCode)
	assert.False(t, location.Degraded)
}

func TestResolveNormalizesSeparators(t *testing.T) {
	lookup := newCountingLookup().add(saoPauloAddress())
	resolver := newResolver(lookup, newMemCache(), services.ResolverConfig{})

	location := resolver.Resolve(context.Background(), " 01310-100 ")

	assert.Equal(t, "01310-100", location.PostalCode)
	assert.False(t, location.Degraded)
	assert.Equal(t, 1, lookup.callCount())
}

func TestResolveMalformedInputDegradesWithoutLookup(t *testing.T) {
	lookup := newCountingLookup()
	resolver := newResolver(lookup, newMemCache(), services.ResolverConfig{DefaultState: "SP"})

	location := resolver.Resolve(context.Background(), "not a cep")

	assert.True(t, location.Degraded)
	assert.Equal(t, entities.DegradedCity, location.City)
	assert.Equal(t, "SP", location.State)
	assert.Empty(t, location.PostalCode)
	assert.Equal(t, 0, lookup.callCount(), "malformed input must not reach the external lookup")
}

func TestResolveUnknownCodeDegradesKeepingPostalCode(t *testing.T) {
	lookup := newCountingLookup()
	resolver := newResolver(lookup, newMemCache(), services.ResolverConfig{DefaultState: "RJ"})

	location := resolver.Resolve(context.Background(), "99999999")

	assert.True(t, location.Degraded)
	assert.Equal(t, "99999-999", location.PostalCode)
	assert.Equal(t, entities.DegradedCity, location.City)
	assert.Equal(t, "RJ", location.State)
}

func TestResolveCacheHitSkipsLookup(t *testing.T) {
	lookup := newCountingLookup().add(saoPauloAddress())
	resolver := newResolver(lookup, newMemCache(), services.ResolverConfig{})

	first := resolver.Resolve(context.Background(), "01310-100")
	second := resolver.Resolve(context.Background(), "01310100")

	assert.Equal(t, 1, lookup.callCount(), "second resolve must be served from cache")
	assert.Equal(t, first.City, second.City)
	assert.Equal(t, first.PostalCode, second.PostalCode)
}

func TestResolveExpiredEntryRefetches(t *testing.T) {
	lookup := newCountingLookup().add(saoPauloAddress())
	cache := newMemCache()
	resolver := newResolver(lookup, cache, services.ResolverConfig{TTL: time.Hour})

	seedCacheEntry(t, cache, "01310100", &entities.Location{
		PostalCode: "01310-100",
		City:       "São Paulo",
		State:      "SP",
		FetchedAt:  time.Now().Add(-2 * time.Hour),
	})

	location := resolver.Resolve(context.Background(), "01310100")

	assert.Equal(t, 1, lookup.callCount(), "expired entry must trigger a fresh lookup")
	assert.False(t, location.Degraded)
	assert.WithinDuration(t, time.Now(), location.FetchedAt, time.Minute)
}

func TestResolveMany(t *testing.T) {
	lookup := newCountingLookup().add(saoPauloAddress())
	resolver := newResolver(lookup, newMemCache(), services.ResolverConfig{Concurrency: 4})

	results := resolver.ResolveMany(context.Background(), []string{"01310-100", "99999999", "bogus"})

	require.Len(t, results, 3)
	assert.False(t, results["01310-100"].Degraded)
	assert.True(t, results["99999999"].Degraded)
	assert.Equal(t, "99999-999", results["99999999"].PostalCode)
	assert.True(t, results["bogus"].Degraded)
	assert.Empty(t, results["bogus"].PostalCode)
}

func TestCacheStatsAndEvictExpired(t *testing.T) {
	cache := newMemCache()
	resolver := newResolver(newCountingLookup(), cache, services.ResolverConfig{TTL: time.Hour})

	seedCacheEntry(t, cache, "01310100", &entities.Location{City: "São Paulo", FetchedAt: time.Now()})
	seedCacheEntry(t, cache, "20040020", &entities.Location{City: "Rio de Janeiro", FetchedAt: time.Now().Add(-3 * time.Hour)})
	seedCacheEntry(t, cache, "30130010", &entities.Location{City: "Belo Horizonte", FetchedAt: time.Now().Add(-2 * time.Hour)})

	stats, err := resolver.CacheStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Valid)
	assert.Equal(t, 2, stats.Expired)

	evicted, err := resolver.EvictExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, evicted)

	stats, err = resolver.CacheStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Valid)
	assert.Equal(t, 0, stats.Expired)
}

func TestSweepEvictsExpiredEntries(t *testing.T) {
	cache := newMemCache()
	resolver := newResolver(newCountingLookup(), cache, services.ResolverConfig{
		TTL:           time.Hour,
		SweepInterval: 10 * time.Millisecond,
	})

	seedCacheEntry(t, cache, "20040020", &entities.Location{City: "Rio de Janeiro", FetchedAt: time.Now().Add(-2 * time.Hour)})

	resolver.StartSweep()
	defer resolver.Stop()

	assert.Eventually(t, func() bool {
		stats, err := resolver.CacheStats(context.Background())
		return err == nil && stats.Expired == 0
	}, time.Second, 10*time.Millisecond)
}

func TestApproxDistance(t *testing.T) {
	resolver := newResolver(newCountingLookup(), newMemCache(), services.ResolverConfig{})

	assert.InDelta(t, 0.0, resolver.ApproxDistance("01310-100", "01310100"), 0.0001)
	assert.InDelta(t, 1.0, resolver.ApproxDistance("01310100", "01311100"), 0.0001)
	assert.Equal(t, math.MaxFloat64, resolver.ApproxDistance("garbage", "01310100"))
}
