package entities

import (
	"time"
)

// ProviderStatus represents the enrollment status of a provider
type ProviderStatus string

const (
	ProviderStatusActive    ProviderStatus = "active"
	ProviderStatusInactive  ProviderStatus = "inactive"
	ProviderStatusSuspended ProviderStatus = "suspended"
)

// Provider represents an affiliated clinician eligible to receive leads
type Provider struct {
	ID              string         `json:"id" db:"id"`
	Name            string         `json:"name" db:"name"`
	ClinicName      string         `json:"clinic_name" db:"clinic_name"`
	CRM             string         `json:"crm" db:"crm"`
	City            string         `json:"city" db:"city"`
	State           string         `json:"state" db:"state"`
	PostalCode      string         `json:"postal_code" db:"postal_code"`
	MonthlyCapacity int            `json:"monthly_capacity" db:"monthly_capacity"`
	Status          ProviderStatus `json:"status" db:"status"`
	EnrolledAt      time.Time      `json:"enrolled_at" db:"enrolled_at"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the provider may receive new assignments
func (p *Provider) IsActive() bool {
	return p.Status == ProviderStatusActive
}

// Headroom returns remaining monthly capacity given the current active count.
// It can go negative when a provider has drifted over capacity.
func (p *Provider) Headroom(activeCount int) int {
	return p.MonthlyCapacity - activeCount
}
