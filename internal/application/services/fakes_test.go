package services_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/entities"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/providers"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/Referralnetworkdesign/backend/pkg/errors"
	"github.com/zatekoja/Referralnetworkdesign/backend/pkg/utils"
)

// memProviderRepo is an in-memory ProviderRepository
type memProviderRepo struct {
	mu        sync.Mutex
	providers map[string]*entities.Provider
}

func newMemProviderRepo(list ...*entities.Provider) *memProviderRepo {
	repo := &memProviderRepo{providers: make(map[string]*entities.Provider)}
	for _, p := range list {
		repo.providers[p.ID] = p
	}
	return repo
}

func (r *memProviderRepo) Create(ctx context.Context, provider *entities.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.ID] = provider
	return nil
}

func (r *memProviderRepo) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[id]; ok {
		return p, nil
	}
	return nil, apperrors.NewNotFoundError("provider not found")
}

func (r *memProviderRepo) Update(ctx context.Context, provider *entities.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.ID] = provider
	return nil
}

func (r *memProviderRepo) List(ctx context.Context, filter repositories.ProviderFilter) ([]*entities.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Provider
	for _, p := range r.providers {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.State != "" && p.State != filter.State {
			continue
		}
		out = append(out, p)
	}
	sortByEnrollment(out)
	return out, nil
}

func (r *memProviderRepo) ListActive(ctx context.Context, match repositories.ProviderMatch) ([]*entities.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Provider
	for _, p := range r.providers {
		if !p.IsActive() {
			continue
		}
		if match.ExcludeID != "" && p.ID == match.ExcludeID {
			continue
		}
		if match.PostalCode != "" && utils.NormalizePostalCode(p.PostalCode) != match.PostalCode {
			continue
		}
		if match.PostalPrefix != "" && !strings.HasPrefix(utils.NormalizePostalCode(p.PostalCode), match.PostalPrefix) {
			continue
		}
		if match.City != "" && !strings.EqualFold(p.City, match.City) {
			continue
		}
		if match.State != "" && p.State != match.State {
			continue
		}
		out = append(out, p)
	}
	sortByEnrollment(out)
	return out, nil
}

func sortByEnrollment(list []*entities.Provider) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].EnrolledAt.Before(list[j].EnrolledAt)
	})
}

// memLeadRepo is an in-memory LeadRepository
type memLeadRepo struct {
	mu    sync.Mutex
	leads map[string]*entities.Lead
}

func newMemLeadRepo(list ...*entities.Lead) *memLeadRepo {
	repo := &memLeadRepo{leads: make(map[string]*entities.Lead)}
	for _, l := range list {
		repo.leads[l.ID] = l
	}
	return repo
}

func (r *memLeadRepo) Create(ctx context.Context, lead *entities.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads[lead.ID] = lead
	return nil
}

func (r *memLeadRepo) GetByID(ctx context.Context, id string) (*entities.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.leads[id]; ok {
		return l, nil
	}
	return nil, apperrors.NewNotFoundError("lead not found")
}

func (r *memLeadRepo) SetProvider(ctx context.Context, leadID, providerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead, ok := r.leads[leadID]
	if !ok {
		return apperrors.NewNotFoundError("lead not found")
	}
	lead.ProviderID = &providerID
	lead.Status = entities.LeadStatusAssigned
	return nil
}

// memAssignmentRepo is an in-memory AssignmentRepository
type memAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[string]*entities.Assignment
}

func newMemAssignmentRepo(list ...*entities.Assignment) *memAssignmentRepo {
	repo := &memAssignmentRepo{assignments: make(map[string]*entities.Assignment)}
	for _, a := range list {
		repo.assignments[a.ID] = a
	}
	return repo
}

func (r *memAssignmentRepo) Create(ctx context.Context, assignment *entities.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments[assignment.ID] = assignment
	return nil
}

func (r *memAssignmentRepo) GetByID(ctx context.Context, id string) (*entities.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.assignments[id]; ok {
		return a, nil
	}
	return nil, apperrors.NewNotFoundError("assignment not found")
}

func (r *memAssignmentRepo) GetActiveByLead(ctx context.Context, leadID string) (*entities.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assignments {
		if a.LeadID == leadID && a.Status.IsActive() {
			return a, nil
		}
	}
	return nil, apperrors.NewNotFoundError("no active assignment")
}

func (r *memAssignmentRepo) UpdateProvider(ctx context.Context, assignmentID, providerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[assignmentID]
	if !ok || a.Status != entities.AssignmentStatusAssigned {
		return apperrors.NewConflictError("assignment is not reassignable")
	}
	a.ProviderID = providerID
	return nil
}

func (r *memAssignmentRepo) UpdateStatus(ctx context.Context, assignmentID string, status entities.AssignmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[assignmentID]
	if !ok {
		return apperrors.NewNotFoundError("assignment not found")
	}
	a.Status = status
	return nil
}

func (r *memAssignmentRepo) CountActive(ctx context.Context, providerID, monthBucket string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, a := range r.assignments {
		if a.ProviderID == providerID && a.MonthBucket == monthBucket && a.Status.IsActive() {
			count++
		}
	}
	return count, nil
}

func (r *memAssignmentRepo) ActiveCounts(ctx context.Context, monthBucket string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, a := range r.assignments {
		if a.MonthBucket == monthBucket && a.Status.IsActive() {
			counts[a.ProviderID]++
		}
	}
	return counts, nil
}

func (r *memAssignmentRepo) ListReassignable(ctx context.Context, providerID, monthBucket string, limit int) ([]*entities.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Assignment
	for _, a := range r.assignments {
		if a.ProviderID == providerID && a.MonthBucket == monthBucket && a.Status == entities.AssignmentStatusAssigned {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// memCache is an in-memory CacheProvider
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("key not found: %s", key)
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok, nil
}

func (c *memCache) Keys(ctx context.Context, pattern string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (c *memCache) DeletePattern(ctx context.Context, pattern string) error {
	keys, _ := c.Keys(ctx, pattern)
	for _, k := range keys {
		_ = c.Delete(ctx, k)
	}
	return nil
}

// countingLookup wraps canned postal addresses and counts external calls
type countingLookup struct {
	mu        sync.Mutex
	addresses map[string]*providers.PostalAddress
	err       error
	calls     int
}

func newCountingLookup() *countingLookup {
	return &countingLookup{addresses: make(map[string]*providers.PostalAddress)}
}

func (l *countingLookup) add(addr *providers.PostalAddress) *countingLookup {
	l.addresses[addr.PostalCode] = addr
	return l
}

func (l *countingLookup) Lookup(ctx context.Context, postalCode string) (*providers.PostalAddress, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	if addr, ok := l.addresses[postalCode]; ok {
		return addr, nil
	}
	return nil, providers.ErrPostalCodeNotFound
}

func (l *countingLookup) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// recordingEventBus captures published events per channel
type recordingEventBus struct {
	mu     sync.Mutex
	events map[string][]*entities.LeadEvent
}

func (b *recordingEventBus) Publish(ctx context.Context, channel string, event *entities.LeadEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.events == nil {
		b.events = make(map[string][]*entities.LeadEvent)
	}
	b.events[channel] = append(b.events[channel], event)
	return nil
}

func (b *recordingEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.LeadEvent, error) {
	return nil, nil
}

func (b *recordingEventBus) Unsubscribe(ctx context.Context, channel string) error { return nil }

func (b *recordingEventBus) Close() error { return nil }

func (b *recordingEventBus) published() []*entities.LeadEvent {
	return b.publishedOn(providers.EventChannelLeadUpdates)
}

func (b *recordingEventBus) publishedOn(channel string) []*entities.LeadEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*entities.LeadEvent(nil), b.events[channel]...)
}
