package entities

import (
	"time"
)

// LeadStatus represents the lifecycle status of an intake record
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusAssigned  LeadStatus = "assigned"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusClosed    LeadStatus = "closed"
)

// Lead represents a prospective-patient intake record awaiting assignment
type Lead struct {
	ID          string     `json:"id" db:"id"`
	RawLocation string     `json:"raw_location" db:"raw_location"`
	Consent     bool       `json:"consent" db:"consent"`
	ProviderID  *string    `json:"provider_id,omitempty" db:"provider_id"`
	Status      LeadStatus `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
