package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/entities"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/providers"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/repositories"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/Referralnetworkdesign/backend/pkg/errors"
	"github.com/zatekoja/Referralnetworkdesign/backend/pkg/utils"
)

// AssignmentService selects a provider for a lead using the tiered match
// hierarchy and per-provider monthly capacity accounting.
//
// The capacity check before creating an assignment is intentionally not
// atomic against the store: concurrent intakes can race past the count and
// transiently over-allocate a provider. Rebalancing is the corrective
// control loop. A stricter variant would replace the check with a
// conditional write against a per-provider counter, at the cost of different
// behavior under load.
type AssignmentService struct {
	providerRepo   repositories.ProviderRepository
	leadRepo       repositories.LeadRepository
	assignmentRepo repositories.AssignmentRepository
	resolver       *LocationResolverService
	matchers       []Matcher
	eventBus       providers.EventBus
	metrics        *observability.Metrics
	defaultState   string
}

// NewAssignmentService creates a new assignment service. The matchers slice
// defines the selection hierarchy; pass DefaultMatchers for the standard tiers.
func NewAssignmentService(
	providerRepo repositories.ProviderRepository,
	leadRepo repositories.LeadRepository,
	assignmentRepo repositories.AssignmentRepository,
	resolver *LocationResolverService,
	matchers []Matcher,
	eventBus providers.EventBus,
	metrics *observability.Metrics,
	defaultState string,
) *AssignmentService {
	return &AssignmentService{
		providerRepo:   providerRepo,
		leadRepo:       leadRepo,
		assignmentRepo: assignmentRepo,
		resolver:       resolver,
		matchers:       matchers,
		eventBus:       eventBus,
		metrics:        metrics,
		defaultState:   defaultState,
	}
}

// Assign selects a provider for the lead's location and creates the
// assignment. Returns an UNAVAILABLE error when no eligible provider with
// capacity headroom exists at any tier.
func (s *AssignmentService) Assign(ctx context.Context, leadID, rawLocation string) (*entities.Assignment, error) {
	logger := observability.LeadLogger(ctx, leadID)

	lead, err := s.leadRepo.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	existing, err := s.assignmentRepo.GetActiveByLead(ctx, lead.ID)
	if err == nil && existing != nil {
		return nil, apperrors.NewConflictError("lead already has an active assignment")
	}
	// Only the NotFound sentinel means "no active assignment"; a store read
	// failure must not let a duplicate active assignment through.
	if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return nil, err
	}

	if rawLocation == "" {
		rawLocation = lead.RawLocation
	}

	location := s.parseRawLocation(rawLocation)
	monthBucket := entities.CurrentMonthBucket()

	candidates, tier, err := s.matchCandidates(ctx, &location)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		s.recordNoProvider(ctx)
		return nil, apperrors.NewUnavailableError("no provider available for lead location")
	}

	counts, err := s.assignmentRepo.ActiveCounts(ctx, monthBucket)
	if err != nil {
		return nil, err
	}
	rankByHeadroom(candidates, counts)
	chosen := candidates[0]

	// Recompute the winner's load: the ranking counts may be stale by now.
	activeCount, err := s.assignmentRepo.CountActive(ctx, chosen.ID, monthBucket)
	if err != nil {
		return nil, err
	}
	if activeCount >= chosen.MonthlyCapacity {
		logger.Info().
			Str("provider_id", chosen.ID).
			Int("active", activeCount).
			Int("capacity", chosen.MonthlyCapacity).
			Msg("top candidate at capacity, searching alternates")

		alternate, err := s.FindAlternate(ctx, chosen, monthBucket)
		if err != nil {
			return nil, err
		}
		if alternate == nil {
			s.recordNoProvider(ctx)
			return nil, apperrors.NewUnavailableError("no provider with available capacity")
		}
		chosen = alternate
	}

	now := time.Now()
	assignment := &entities.Assignment{
		ID:          uuid.NewString(),
		LeadID:      lead.ID,
		ProviderID:  chosen.ID,
		Status:      entities.AssignmentStatusAssigned,
		MonthBucket: entities.MonthBucketFor(now),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, err
	}
	if err := s.leadRepo.SetProvider(ctx, lead.ID, chosen.ID); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, entities.LeadEventAssigned, assignment, "")

	if s.metrics != nil {
		s.metrics.AssignmentCount.Add(ctx, 1)
	}
	logger.Info().
		Str("provider_id", chosen.ID).
		Str("tier", tier).
		Msg("lead assigned")

	return assignment, nil
}

// FindAlternate searches for an active provider with capacity headroom to
// take over from source: same city first, then same state, then any active
// provider, ranked by ascending current-month load and descending capacity.
// Returns nil when no alternate has headroom.
func (s *AssignmentService) FindAlternate(ctx context.Context, source *entities.Provider, monthBucket string) (*entities.Provider, error) {
	tiers := []repositories.ProviderMatch{
		{City: source.City, State: source.State, ExcludeID: source.ID},
		{State: source.State, ExcludeID: source.ID},
		{ExcludeID: source.ID},
	}

	for _, match := range tiers {
		candidates, err := s.providerRepo.ListActive(ctx, match)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			continue
		}

		counts, err := s.assignmentRepo.ActiveCounts(ctx, monthBucket)
		if err != nil {
			return nil, err
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			loadI, loadJ := counts[candidates[i].ID], counts[candidates[j].ID]
			if loadI != loadJ {
				return loadI < loadJ
			}
			return candidates[i].MonthlyCapacity > candidates[j].MonthlyCapacity
		})

		for _, candidate := range candidates {
			if counts[candidate.ID] < candidate.MonthlyCapacity {
				return candidate, nil
			}
		}
	}

	return nil, nil
}

// matchCandidates walks the tier hierarchy and returns the first non-empty
// candidate set along with the winning tier's name.
func (s *AssignmentService) matchCandidates(ctx context.Context, location *LeadLocation) ([]*entities.Provider, string, error) {
	resolved := false

	for _, matcher := range s.matchers {
		// The lower tiers need city/state, which for postal-code input
		// only exists after resolution. Resolve at most once, and only
		// when the postal tiers came up empty.
		switch matcher.(type) {
		case *CityStateMatcher, *StateMatcher:
			if !resolved && location.PostalCode != "" && location.City == "" {
				resolved = true
				loc := s.resolver.Resolve(ctx, location.PostalCode)
				location.City = loc.City
				location.State = loc.State
			}
		}

		candidates, err := matcher.Match(ctx, *location)
		if err != nil {
			return nil, "", err
		}
		if len(candidates) > 0 {
			return candidates, matcher.Name(), nil
		}
	}

	return nil, "", nil
}

// parseRawLocation interprets the raw intake location: an 8-digit postal
// code, "city, state" free text, or a bare city name.
func (s *AssignmentService) parseRawLocation(rawLocation string) LeadLocation {
	digits := utils.NormalizePostalCode(rawLocation)
	if len(digits) == utils.CEPLength {
		return LeadLocation{PostalCode: digits}
	}

	city, state := utils.ParseCityState(rawLocation)
	if state == "" {
		state = s.defaultState
	}
	return LeadLocation{City: city, State: state}
}

func rankByHeadroom(candidates []*entities.Provider, counts map[string]int) {
	sort.SliceStable(candidates, func(i, j int) bool {
		headroomI := candidates[i].Headroom(counts[candidates[i].ID])
		headroomJ := candidates[j].Headroom(counts[candidates[j].ID])
		if headroomI != headroomJ {
			return headroomI > headroomJ
		}
		return candidates[i].EnrolledAt.Before(candidates[j].EnrolledAt)
	})
}

func (s *AssignmentService) publishEvent(ctx context.Context, eventType entities.LeadEventType, assignment *entities.Assignment, prevProviderID string) {
	if s.eventBus == nil {
		return
	}

	event := &entities.LeadEvent{
		ID:             uuid.NewString(),
		EventType:      eventType,
		LeadID:         assignment.LeadID,
		AssignmentID:   assignment.ID,
		ProviderID:     assignment.ProviderID,
		PrevProviderID: prevProviderID,
		OccurredAt:     time.Now(),
	}

	// Fanned out to the shared feed and the assigned provider's own channel.
	channels := []string{
		providers.EventChannelLeadUpdates,
		providers.GetProviderChannel(assignment.ProviderID),
	}
	for _, channel := range channels {
		if err := s.eventBus.Publish(ctx, channel, event); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).
				Str("lead_id", assignment.LeadID).
				Str("channel", channel).
				Msg("failed to publish lead event")
		}
	}
}

func (s *AssignmentService) recordNoProvider(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.NoProviderCount.Add(ctx, 1)
	}
}
