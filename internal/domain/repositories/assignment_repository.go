package repositories

import (
	"context"

	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/entities"
)

// AssignmentRepository defines the interface for assignment data operations.
// Assignments are append-only: rows are created and mutated, never deleted.
type AssignmentRepository interface {
	// Create creates a new assignment
	Create(ctx context.Context, assignment *entities.Assignment) error

	// GetByID retrieves an assignment by ID
	GetByID(ctx context.Context, id string) (*entities.Assignment, error)

	// GetActiveByLead retrieves the lead's assignment still in an active
	// status (assigned or contacted), if any
	GetActiveByLead(ctx context.Context, leadID string) (*entities.Assignment, error)

	// UpdateProvider relinks an assignment to a new provider. The update
	// applies only while the assignment status is still assigned; identity,
	// creation time and month bucket are preserved.
	UpdateProvider(ctx context.Context, assignmentID, providerID string) error

	// UpdateStatus advances an assignment's lifecycle status
	UpdateStatus(ctx context.Context, assignmentID string, status entities.AssignmentStatus) error

	// CountActive counts a provider's assignments in an active status for
	// the given month bucket
	CountActive(ctx context.Context, providerID, monthBucket string) (int, error)

	// ActiveCounts returns active-assignment counts per provider for the
	// given month bucket. Providers without active assignments are absent.
	ActiveCounts(ctx context.Context, monthBucket string) (map[string]int, error)

	// ListReassignable lists a provider's still-assigned (never contacted)
	// assignments for the month bucket, most recently created first,
	// capped at limit
	ListReassignable(ctx context.Context, providerID, monthBucket string, limit int) ([]*entities.Assignment, error)
}
