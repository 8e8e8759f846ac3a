package repositories

import (
	"context"

	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/entities"
)

// LeadRepository defines the interface for lead data operations
type LeadRepository interface {
	// Create creates a new lead
	Create(ctx context.Context, lead *entities.Lead) error

	// GetByID retrieves a lead by ID
	GetByID(ctx context.Context, id string) (*entities.Lead, error)

	// SetProvider updates the lead's provider reference and marks it assigned
	SetProvider(ctx context.Context, leadID, providerID string) error
}
