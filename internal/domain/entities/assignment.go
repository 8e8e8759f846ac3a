package entities

import (
	"time"
)

// AssignmentStatus represents the status of a lead-provider assignment.
// Valid transitions: assigned -> contacted -> {converted | cancelled}.
// Rebalancing may swap the provider link while the status is still assigned;
// it is the only mutation that does not advance the status.
type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "assigned"
	AssignmentStatusContacted AssignmentStatus = "contacted"
	AssignmentStatusConverted AssignmentStatus = "converted"
	AssignmentStatusCancelled AssignmentStatus = "cancelled"
)

// IsActive reports whether the status counts against provider capacity
func (s AssignmentStatus) IsActive() bool {
	return s == AssignmentStatusAssigned || s == AssignmentStatusContacted
}

// Assignment links a lead to a provider. Assignments are never deleted;
// the month bucket is derived from the creation time and immutable.
type Assignment struct {
	ID          string           `json:"id" db:"id"`
	LeadID      string           `json:"lead_id" db:"lead_id"`
	ProviderID  string           `json:"provider_id" db:"provider_id"`
	Status      AssignmentStatus `json:"status" db:"status"`
	MonthBucket string           `json:"month_bucket" db:"month_bucket"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// MonthBucketFor returns the capacity-accounting key (YYYY-MM) for a time
func MonthBucketFor(t time.Time) string {
	return t.Format("2006-01")
}

// CurrentMonthBucket returns the capacity-accounting key for now
func CurrentMonthBucket() string {
	return MonthBucketFor(time.Now())
}
