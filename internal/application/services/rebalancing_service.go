package services

import (
	"context"
	"fmt"

	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/entities"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/repositories"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/infrastructure/observability"
)

// RebalanceResult summarizes one rebalancing run
type RebalanceResult struct {
	Considered int    `json:"considered"`
	Moved      int    `json:"moved"`
	Message    string `json:"message"`
}

// RebalancingService is the periodic corrective process that moves excess
// unconfirmed assignments away from over-capacity providers. It reuses the
// assignment engine's alternate search and runs to completion once invoked:
// providers are processed independently, successful moves are never rolled
// back, and providers without alternates are reported, not failed.
type RebalancingService struct {
	providerRepo   repositories.ProviderRepository
	leadRepo       repositories.LeadRepository
	assignmentRepo repositories.AssignmentRepository
	engine         *AssignmentService
	metrics        *observability.Metrics
}

// NewRebalancingService creates a new rebalancing service
func NewRebalancingService(
	providerRepo repositories.ProviderRepository,
	leadRepo repositories.LeadRepository,
	assignmentRepo repositories.AssignmentRepository,
	engine *AssignmentService,
	metrics *observability.Metrics,
) *RebalancingService {
	return &RebalancingService{
		providerRepo:   providerRepo,
		leadRepo:       leadRepo,
		assignmentRepo: assignmentRepo,
		engine:         engine,
		metrics:        metrics,
	}
}

// Rebalance detects providers over their monthly capacity and moves their
// excess still-`assigned` assignments (newest first) to alternates with
// headroom. Assignments already in contact are never touched; assignment
// identity and creation time are preserved on a move.
func (s *RebalancingService) Rebalance(ctx context.Context) (*RebalanceResult, error) {
	logger := observability.LoggerFromContext(ctx)
	monthBucket := entities.CurrentMonthBucket()

	activeProviders, err := s.providerRepo.ListActive(ctx, repositories.ProviderMatch{})
	if err != nil {
		return nil, err
	}

	counts, err := s.assignmentRepo.ActiveCounts(ctx, monthBucket)
	if err != nil {
		return nil, err
	}

	var overCapacity []*entities.Provider
	for _, provider := range activeProviders {
		if counts[provider.ID] > provider.MonthlyCapacity {
			overCapacity = append(overCapacity, provider)
		}
	}

	if len(overCapacity) == 0 {
		return &RebalanceResult{Message: "no provider over capacity"}, nil
	}

	result := &RebalanceResult{}
	stuckProviders := 0

	for _, provider := range overCapacity {
		excess := counts[provider.ID] - provider.MonthlyCapacity

		assignments, err := s.assignmentRepo.ListReassignable(ctx, provider.ID, monthBucket, excess)
		if err != nil {
			logger.Warn().Err(err).Str("provider_id", provider.ID).Msg("failed to list reassignable assignments")
			continue
		}
		result.Considered += len(assignments)

		movedForProvider := 0
		for _, assignment := range assignments {
			alternate, err := s.engine.FindAlternate(ctx, provider, monthBucket)
			if err != nil {
				logger.Warn().Err(err).Str("assignment_id", assignment.ID).Msg("alternate search failed")
				continue
			}
			if alternate == nil {
				break
			}

			if err := s.assignmentRepo.UpdateProvider(ctx, assignment.ID, alternate.ID); err != nil {
				logger.Warn().Err(err).Str("assignment_id", assignment.ID).Msg("failed to relink assignment")
				continue
			}
			if err := s.leadRepo.SetProvider(ctx, assignment.LeadID, alternate.ID); err != nil {
				logger.Warn().Err(err).Str("lead_id", assignment.LeadID).Msg("failed to update lead provider reference")
			}

			moved := *assignment
			moved.ProviderID = alternate.ID
			s.engine.publishEvent(ctx, entities.LeadEventReassigned, &moved, provider.ID)

			movedForProvider++
			result.Moved++
		}

		if movedForProvider < len(assignments) {
			stuckProviders++
			logger.Warn().
				Str("provider_id", provider.ID).
				Int("moved", movedForProvider).
				Int("excess", excess).
				Msg("provider still over capacity, no alternates with headroom")
		}
	}

	if s.metrics != nil && result.Moved > 0 {
		s.metrics.RebalanceMoveCount.Add(ctx, int64(result.Moved))
	}

	result.Message = fmt.Sprintf(
		"rebalanced %d of %d assignments across %d over-capacity providers",
		result.Moved, result.Considered, len(overCapacity),
	)
	if stuckProviders > 0 {
		result.Message += fmt.Sprintf(" (%d providers without available alternates)", stuckProviders)
	}

	logger.Info().
		Int("considered", result.Considered).
		Int("moved", result.Moved).
		Int("over_capacity", len(overCapacity)).
		Msg("rebalancing run complete")

	return result, nil
}
