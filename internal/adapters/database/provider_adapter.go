package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/entities"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/repositories"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/Referralnetworkdesign/backend/pkg/errors"
	"github.com/zatekoja/Referralnetworkdesign/backend/pkg/utils"
)

var providerColumns = []interface{}{
	"id", "name", "clinic_name", "crm", "city", "state", "postal_code",
	"monthly_capacity", "status", "enrolled_at", "created_at", "updated_at",
}

// ProviderAdapter implements the ProviderRepository interface
type ProviderAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProviderAdapter creates a new provider adapter
func NewProviderAdapter(client *postgres.Client) repositories.ProviderRepository {
	return &ProviderAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new provider
func (a *ProviderAdapter) Create(ctx context.Context, provider *entities.Provider) error {
	record := goqu.Record{
		"id":               provider.ID,
		"name":             provider.Name,
		"clinic_name":      provider.ClinicName,
		"crm":              provider.CRM,
		"city":             provider.City,
		"state":            provider.State,
		"postal_code":      utils.NormalizePostalCode(provider.PostalCode),
		"monthly_capacity": provider.MonthlyCapacity,
		"status":           provider.Status,
		"enrolled_at":      provider.EnrolledAt,
		"created_at":       provider.CreatedAt,
		"updated_at":       provider.UpdatedAt,
	}

	query, args, err := a.db.Insert("providers").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create provider", err)
	}

	return nil
}

// GetByID retrieves a provider by ID
func (a *ProviderAdapter) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	query, args, err := a.db.Select(providerColumns...).
		From("providers").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	provider, err := a.scanProvider(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("provider with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get provider", err)
	}

	return provider, nil
}

// Update updates a provider
func (a *ProviderAdapter) Update(ctx context.Context, provider *entities.Provider) error {
	query, args, err := a.db.Update("providers").
		Set(goqu.Record{
			"name":             provider.Name,
			"clinic_name":      provider.ClinicName,
			"crm":              provider.CRM,
			"city":             provider.City,
			"state":            provider.State,
			"postal_code":      utils.NormalizePostalCode(provider.PostalCode),
			"monthly_capacity": provider.MonthlyCapacity,
			"status":           provider.Status,
			"updated_at":       provider.UpdatedAt,
		}).
		Where(goqu.Ex{"id": provider.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update provider", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("provider with id %s not found", provider.ID))
	}

	return nil
}

// List retrieves providers with filters
func (a *ProviderAdapter) List(ctx context.Context, filter repositories.ProviderFilter) ([]*entities.Provider, error) {
	ds := a.db.Select(providerColumns...).From("providers")

	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
	}
	if filter.State != "" {
		ds = ds.Where(goqu.Ex{"state": filter.State})
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.Order(goqu.I("enrolled_at").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryProviders(ctx, query, args)
}

// ListActive retrieves active providers matching the given criteria
func (a *ProviderAdapter) ListActive(ctx context.Context, match repositories.ProviderMatch) ([]*entities.Provider, error) {
	ds := a.db.Select(providerColumns...).
		From("providers").
		Where(goqu.Ex{"status": entities.ProviderStatusActive})

	if match.PostalCode != "" {
		ds = ds.Where(goqu.Ex{"postal_code": match.PostalCode})
	}
	if match.PostalPrefix != "" {
		ds = ds.Where(goqu.L("left(postal_code, ?)", len(match.PostalPrefix)).Eq(match.PostalPrefix))
	}
	if match.City != "" {
		ds = ds.Where(goqu.L("lower(city)").Eq(goqu.L("lower(?)", match.City)))
	}
	if match.State != "" {
		ds = ds.Where(goqu.Ex{"state": match.State})
	}
	if match.ExcludeID != "" {
		ds = ds.Where(goqu.C("id").Neq(match.ExcludeID))
	}

	query, args, err := ds.Order(goqu.I("enrolled_at").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryProviders(ctx, query, args)
}

func (a *ProviderAdapter) queryProviders(ctx context.Context, query string, args []interface{}) ([]*entities.Provider, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list providers", err)
	}
	defer rows.Close()

	var providers []*entities.Provider
	for rows.Next() {
		provider, err := a.scanProvider(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan provider", err)
		}
		providers = append(providers, provider)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate providers", err)
	}

	return providers, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (a *ProviderAdapter) scanProvider(row rowScanner) (*entities.Provider, error) {
	provider := &entities.Provider{}
	var clinicName sql.NullString

	err := row.Scan(
		&provider.ID,
		&provider.Name,
		&clinicName,
		&provider.CRM,
		&provider.City,
		&provider.State,
		&provider.PostalCode,
		&provider.MonthlyCapacity,
		&provider.Status,
		&provider.EnrolledAt,
		&provider.CreatedAt,
		&provider.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	provider.ClinicName = clinicName.String
	return provider, nil
}
