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

// LeadAdapter implements the LeadRepository interface
type LeadAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewLeadAdapter creates a new lead adapter
func NewLeadAdapter(client *postgres.Client) repositories.LeadRepository {
	return &LeadAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new lead
func (a *LeadAdapter) Create(ctx context.Context, lead *entities.Lead) error {
	record := goqu.Record{
		"id":           lead.ID,
		"raw_location": lead.RawLocation,
		"consent":      lead.Consent,
		"provider_id":  lead.ProviderID,
		"status":       lead.Status,
		"created_at":   lead.CreatedAt,
		"updated_at":   lead.UpdatedAt,
	}

	query, args, err := a.db.Insert("leads").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create lead", err)
	}

	return nil
}

// GetByID retrieves a lead by ID
func (a *LeadAdapter) GetByID(ctx context.Context, id string) (*entities.Lead, error) {
	query, args, err := a.db.Select(
		"id", "raw_location", "consent", "provider_id", "status", "created_at", "updated_at",
	).From("leads").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	lead := &entities.Lead{}
	var providerID sql.NullString

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&lead.ID,
		&lead.RawLocation,
		&lead.Consent,
		&providerID,
		&lead.Status,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("lead with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get lead", err)
	}

	if providerID.Valid {
		lead.ProviderID = &providerID.String
	}
	return lead, nil
}

// SetProvider updates the lead's provider reference and marks it assigned
func (a *LeadAdapter) SetProvider(ctx context.Context, leadID, providerID string) error {
	query, args, err := a.db.Update("leads").
		Set(goqu.Record{
			"provider_id": providerID,
			"status":      entities.LeadStatusAssigned,
			"updated_at":  time.Now(),
		}).
		Where(goqu.Ex{"id": leadID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to set lead provider", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("lead with id %s not found", leadID))
	}

	return nil
}
