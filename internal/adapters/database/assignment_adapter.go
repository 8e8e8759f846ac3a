package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/entities"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/repositories"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/Referralnetworkdesign/backend/pkg/errors"
)

var assignmentColumns = []interface{}{
	"id", "lead_id", "provider_id", "status", "month_bucket", "created_at", "updated_at",
}

var activeStatuses = []entities.AssignmentStatus{
	entities.AssignmentStatusAssigned,
	entities.AssignmentStatusContacted,
}

// AssignmentAdapter implements the AssignmentRepository interface
type AssignmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAssignmentAdapter creates a new assignment adapter
func NewAssignmentAdapter(client *postgres.Client) repositories.AssignmentRepository {
	return &AssignmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new assignment
func (a *AssignmentAdapter) Create(ctx context.Context, assignment *entities.Assignment) error {
	record := goqu.Record{
		"id":           assignment.ID,
		"lead_id":      assignment.LeadID,
		"provider_id":  assignment.ProviderID,
		"status":       assignment.Status,
		"month_bucket": assignment.MonthBucket,
		"created_at":   assignment.CreatedAt,
		"updated_at":   assignment.UpdatedAt,
	}

	query, args, err := a.db.Insert("assignments").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create assignment", err)
	}

	return nil
}

// GetByID retrieves an assignment by ID
func (a *AssignmentAdapter) GetByID(ctx context.Context, id string) (*entities.Assignment, error) {
	query, args, err := a.db.Select(assignmentColumns...).
		From("assignments").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	assignment, err := scanAssignment(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("assignment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get assignment", err)
	}

	return assignment, nil
}

// GetActiveByLead retrieves the lead's active assignment, if any
func (a *AssignmentAdapter) GetActiveByLead(ctx context.Context, leadID string) (*entities.Assignment, error) {
	query, args, err := a.db.Select(assignmentColumns...).
		From("assignments").
		Where(goqu.Ex{
			"lead_id": leadID,
			"status":  activeStatuses,
		}).
		Order(goqu.I("created_at").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	assignment, err := scanAssignment(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no active assignment for lead %s", leadID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get active assignment", err)
	}

	return assignment, nil
}

// UpdateProvider relinks an assignment to a new provider while still assigned
func (a *AssignmentAdapter) UpdateProvider(ctx context.Context, assignmentID, providerID string) error {
	query, args, err := a.db.Update("assignments").
		Set(goqu.Record{
			"provider_id": providerID,
			"updated_at":  time.Now(),
		}).
		Where(goqu.Ex{
			"id":     assignmentID,
			"status": entities.AssignmentStatusAssigned,
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to reassign", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewConflictError(fmt.Sprintf("assignment %s is not reassignable", assignmentID))
	}

	return nil
}

// UpdateStatus advances an assignment's lifecycle status
func (a *AssignmentAdapter) UpdateStatus(ctx context.Context, assignmentID string, status entities.AssignmentStatus) error {
	query, args, err := a.db.Update("assignments").
		Set(goqu.Record{
			"status":     status,
			"updated_at": time.Now(),
		}).
		Where(goqu.Ex{"id": assignmentID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update assignment status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("assignment with id %s not found", assignmentID))
	}

	return nil
}

// CountActive counts a provider's active assignments for the month bucket
func (a *AssignmentAdapter) CountActive(ctx context.Context, providerID, monthBucket string) (int, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("assignments").
		Where(goqu.Ex{
			"provider_id":  providerID,
			"month_bucket": monthBucket,
			"status":       activeStatuses,
		}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count active assignments", err)
	}

	return count, nil
}

// ActiveCounts returns active-assignment counts per provider for the month bucket
func (a *AssignmentAdapter) ActiveCounts(ctx context.Context, monthBucket string) (map[string]int, error) {
	query, args, err := a.db.Select("provider_id", goqu.COUNT("*")).
		From("assignments").
		Where(goqu.Ex{
			"month_bucket": monthBucket,
			"status":       activeStatuses,
		}).
		GroupBy("provider_id").
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build count query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to count active assignments", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var providerID string
		var count int
		if err := rows.Scan(&providerID, &count); err != nil {
			return nil, apperrors.NewInternalError("failed to scan count row", err)
		}
		counts[providerID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate count rows", err)
	}

	return counts, nil
}

// ListReassignable lists still-assigned assignments, newest first
func (a *AssignmentAdapter) ListReassignable(ctx context.Context, providerID, monthBucket string, limit int) ([]*entities.Assignment, error) {
	ds := a.db.Select(assignmentColumns...).
		From("assignments").
		Where(goqu.Ex{
			"provider_id":  providerID,
			"month_bucket": monthBucket,
			"status":       entities.AssignmentStatusAssigned,
		}).
		Order(goqu.I("created_at").Desc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list reassignable assignments", err)
	}
	defer rows.Close()

	var assignments []*entities.Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan assignment", err)
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate assignments", err)
	}

	return assignments, nil
}

func scanAssignment(row rowScanner) (*entities.Assignment, error) {
	assignment := &entities.Assignment{}
	err := row.Scan(
		&assignment.ID,
		&assignment.LeadID,
		&assignment.ProviderID,
		&assignment.Status,
		&assignment.MonthBucket,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return assignment, nil
}
