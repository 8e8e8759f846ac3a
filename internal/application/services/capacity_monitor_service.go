package services

import (
	"context"
	"sort"

	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/entities"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/repositories"
)

// ProviderUtilization is a provider's monthly capacity usage snapshot
type ProviderUtilization struct {
	ProviderID     string  `json:"provider_id"`
	Name           string  `json:"name"`
	Capacity       int     `json:"capacity"`
	ActiveCount    int     `json:"active_count"`
	UtilizationPct float64 `json:"utilization_pct"`
}

// CapacityMonitorService computes per-provider monthly utilization.
// It is read-only: it reports on capacity but never mutates assignments.
type CapacityMonitorService struct {
	providerRepo     repositories.ProviderRepository
	assignmentRepo   repositories.AssignmentRepository
	warningThreshold float64
}

// NewCapacityMonitorService creates a new capacity monitor. The threshold is
// the utilization percentage at or above which a provider is flagged.
func NewCapacityMonitorService(providerRepo repositories.ProviderRepository, assignmentRepo repositories.AssignmentRepository, warningThreshold float64) *CapacityMonitorService {
	if warningThreshold <= 0 {
		warningThreshold = 80.0
	}
	return &CapacityMonitorService{
		providerRepo:     providerRepo,
		assignmentRepo:   assignmentRepo,
		warningThreshold: warningThreshold,
	}
}

// Utilization returns every active provider's utilization for the month
// bucket (YYYY-MM); an empty month defaults to the current one.
func (s *CapacityMonitorService) Utilization(ctx context.Context, monthBucket string) ([]ProviderUtilization, error) {
	if monthBucket == "" {
		monthBucket = entities.CurrentMonthBucket()
	}

	activeProviders, err := s.providerRepo.ListActive(ctx, repositories.ProviderMatch{})
	if err != nil {
		return nil, err
	}

	counts, err := s.assignmentRepo.ActiveCounts(ctx, monthBucket)
	if err != nil {
		return nil, err
	}

	utilizations := make([]ProviderUtilization, 0, len(activeProviders))
	for _, provider := range activeProviders {
		activeCount := counts[provider.ID]
		pct := 0.0
		if provider.MonthlyCapacity > 0 {
			pct = float64(activeCount) / float64(provider.MonthlyCapacity) * 100.0
		}
		utilizations = append(utilizations, ProviderUtilization{
			ProviderID:     provider.ID,
			Name:           provider.Name,
			Capacity:       provider.MonthlyCapacity,
			ActiveCount:    activeCount,
			UtilizationPct: pct,
		})
	}

	return utilizations, nil
}

// Warnings returns providers at or above the warning threshold for the month
// bucket, sorted by utilization descending.
func (s *CapacityMonitorService) Warnings(ctx context.Context, monthBucket string) ([]ProviderUtilization, error) {
	utilizations, err := s.Utilization(ctx, monthBucket)
	if err != nil {
		return nil, err
	}

	var warnings []ProviderUtilization
	for _, u := range utilizations {
		if u.UtilizationPct >= s.warningThreshold {
			warnings = append(warnings, u)
		}
	}

	sort.SliceStable(warnings, func(i, j int) bool {
		return warnings[i].UtilizationPct > warnings[j].UtilizationPct
	})

	return warnings, nil
}
