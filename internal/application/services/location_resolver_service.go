package services

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/entities"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/providers"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/infrastructure/observability"
	"github.com/zatekoja/Referralnetworkdesign/backend/pkg/utils"
	"golang.org/x/sync/errgroup"
)

const locationCacheKeyPrefix = "cep:v1:"

// ResolverConfig holds tuning for the location resolver
type ResolverConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
	DefaultState  string
	Concurrency   int
}

func (c ResolverConfig) withDefaults() ResolverConfig {
	if c.TTL <= 0 {
		c.TTL = 24 * time.Hour
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Hour
	}
	if c.DefaultState == "" {
		c.DefaultState = "SP"
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 8
	}
	return c
}

// CacheStats summarizes the state of the location cache
type CacheStats struct {
	Valid   int `json:"valid"`
	Expired int `json:"expired"`
}

// LocationResolverService resolves raw postal codes into canonical location
// descriptors, caching results with a TTL. Resolution never fails: malformed
// input and lookup errors yield a degraded descriptor so that assignment can
// proceed with incomplete location data.
type LocationResolverService struct {
	lookup  providers.PostalLookupProvider
	cache   providers.CacheProvider
	cfg     ResolverConfig
	metrics *observability.Metrics
	now     func() time.Time

	sweepCtx    context.Context
	sweepCancel context.CancelFunc
	sweepWG     sync.WaitGroup
}

// NewLocationResolverService creates a new location resolver
func NewLocationResolverService(lookup providers.PostalLookupProvider, cache providers.CacheProvider, cfg ResolverConfig, metrics *observability.Metrics) *LocationResolverService {
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	return &LocationResolverService{
		lookup:      lookup,
		cache:       cache,
		cfg:         cfg.withDefaults(),
		metrics:     metrics,
		now:         time.Now,
		sweepCtx:    sweepCtx,
		sweepCancel: sweepCancel,
	}
}

// Resolve normalizes a raw postal code and returns its canonical descriptor.
// A cache hit within the TTL short-circuits the external lookup. Malformed
// codes and lookup failures are absorbed into a degraded descriptor and
// logged as warnings, never returned as errors.
func (s *LocationResolverService) Resolve(ctx context.Context, rawPostalCode string) *entities.Location {
	logger := observability.LoggerFromContext(ctx)

	digits := utils.NormalizePostalCode(rawPostalCode)
	if len(digits) != utils.CEPLength {
		logger.Warn().Str("raw", rawPostalCode).Msg("postal code does not normalize to 8 digits, using degraded descriptor")
		s.recordLookupFailure(ctx)
		return s.degraded("")
	}

	if cached := s.cachedLocation(ctx, digits); cached != nil {
		if s.metrics != nil {
			s.metrics.CacheHitCount.Add(ctx, 1)
		}
		return cached
	}
	if s.metrics != nil {
		s.metrics.CacheMissCount.Add(ctx, 1)
	}

	address, err := s.lookup.Lookup(ctx, digits)
	if err != nil {
		logger.Warn().Err(err).Str("postal_code", digits).Msg("postal lookup failed, using degraded descriptor")
		s.recordLookupFailure(ctx)
		return s.degraded(digits)
	}

	location := &entities.Location{
		PostalCode:   utils.FormatPostalCode(digits),
		Street:       address.Street,
		Neighborhood: address.Neighborhood,
		City:         address.City,
		State:        address.State,
		RegionCode:   address.RegionCode,
		FetchedAt:    s.now(),
	}

	if payload, err := json.Marshal(location); err == nil {
		// Stored without a cache-side expiry: the resolver owns the TTL so
		// expired entries stay countable until the sweep evicts them.
		if err := s.cache.Set(ctx, locationCacheKeyPrefix+digits, payload, 0); err != nil {
			logger.Warn().Err(err).Str("postal_code", digits).Msg("failed to cache location")
		}
	}

	return location
}

// ResolveMany resolves a batch of postal codes concurrently and returns a
// per-code map. Individual failures degrade like Resolve; the batch itself
// never fails.
func (s *LocationResolverService) ResolveMany(ctx context.Context, postalCodes []string) map[string]*entities.Location {
	results := make(map[string]*entities.Location, len(postalCodes))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for _, code := range postalCodes {
		g.Go(func() error {
			location := s.Resolve(gctx, code)
			mu.Lock()
			results[code] = location
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait only synchronizes completion.
	_ = g.Wait()
	return results
}

// ApproxDistance computes a coarse proximity proxy by scaling the numeric
// difference of two postal codes. It is a ranking hint only and must not be
// used where real geographic distance matters.
func (s *LocationResolverService) ApproxDistance(postalA, postalB string) float64 {
	a, errA := strconv.Atoi(utils.NormalizePostalCode(postalA))
	b, errB := strconv.Atoi(utils.NormalizePostalCode(postalB))
	if errA != nil || errB != nil {
		return math.MaxFloat64
	}
	return math.Abs(float64(a)-float64(b)) / 1000.0
}

// CacheStats returns counts of valid vs TTL-expired cache entries
func (s *LocationResolverService) CacheStats(ctx context.Context) (*CacheStats, error) {
	keys, err := s.cache.Keys(ctx, locationCacheKeyPrefix+"*")
	if err != nil {
		return nil, err
	}

	stats := &CacheStats{}
	now := s.now()
	for _, key := range keys {
		location, err := s.decodeEntry(ctx, key)
		if err != nil {
			continue
		}
		if location.Expired(s.cfg.TTL, now) {
			stats.Expired++
		} else {
			stats.Valid++
		}
	}

	return stats, nil
}

// EvictExpired removes TTL-expired cache entries and returns how many were dropped
func (s *LocationResolverService) EvictExpired(ctx context.Context) (int, error) {
	keys, err := s.cache.Keys(ctx, locationCacheKeyPrefix+"*")
	if err != nil {
		return 0, err
	}

	evicted := 0
	now := s.now()
	for _, key := range keys {
		location, err := s.decodeEntry(ctx, key)
		if err != nil || location.Expired(s.cfg.TTL, now) {
			if err := s.cache.Delete(ctx, key); err == nil {
				evicted++
			}
		}
	}

	return evicted, nil
}

// StartSweep launches the periodic eviction of expired cache entries.
// The sweep runs until Stop is called and never blocks in-flight resolution.
func (s *LocationResolverService) StartSweep() {
	s.sweepWG.Add(1)
	go func() {
		defer s.sweepWG.Done()

		ticker := time.NewTicker(s.cfg.SweepInterval)
		defer ticker.Stop()

		logger := observability.ComponentLogger("location-cache-sweep")

		for {
			select {
			case <-s.sweepCtx.Done():
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(s.sweepCtx, 30*time.Second)
				evicted, err := s.EvictExpired(ctx)
				cancel()
				if err != nil {
					logger.Warn().Err(err).Msg("location cache sweep failed")
					continue
				}
				if evicted > 0 {
					logger.Info().Int("evicted", evicted).Msg("location cache sweep evicted expired entries")
				}
			}
		}
	}()
}

// Stop terminates the periodic sweep and waits for it to finish
func (s *LocationResolverService) Stop() {
	s.sweepCancel()
	s.sweepWG.Wait()
}

func (s *LocationResolverService) cachedLocation(ctx context.Context, digits string) *entities.Location {
	location, err := s.decodeEntry(ctx, locationCacheKeyPrefix+digits)
	if err != nil {
		return nil
	}
	if location.Expired(s.cfg.TTL, s.now()) {
		return nil
	}
	return location
}

func (s *LocationResolverService) decodeEntry(ctx context.Context, key string) (*entities.Location, error) {
	payload, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	location := &entities.Location{}
	if err := json.Unmarshal(payload, location); err != nil {
		return nil, err
	}
	return location, nil
}

func (s *LocationResolverService) degraded(digits string) *entities.Location {
	postalCode := ""
	if len(digits) == utils.CEPLength {
		postalCode = utils.FormatPostalCode(digits)
	}
	return &entities.Location{
		PostalCode: postalCode,
		City:       entities.DegradedCity,
		State:      s.cfg.DefaultState,
		Degraded:   true,
		FetchedAt:  s.now(),
	}
}

func (s *LocationResolverService) recordLookupFailure(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.LookupFailureCount.Add(ctx, 1)
	}
}
