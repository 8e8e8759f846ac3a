package entities

import (
	"time"
)

// LeadEventType identifies the kind of lead lifecycle event
type LeadEventType string

const (
	// LeadEventAssigned is emitted when a lead receives its first provider
	LeadEventAssigned LeadEventType = "lead.assigned"

	// LeadEventReassigned is emitted when rebalancing moves a lead to an alternate
	LeadEventReassigned LeadEventType = "lead.reassigned"
)

// LeadEvent is published on the event bus so the external notification
// pipeline can react to assignment changes.
type LeadEvent struct {
	ID             string        `json:"id"`
	EventType      LeadEventType `json:"event_type"`
	LeadID         string        `json:"lead_id"`
	AssignmentID   string        `json:"assignment_id"`
	ProviderID     string        `json:"provider_id"`
	PrevProviderID string        `json:"prev_provider_id,omitempty"`
	OccurredAt     time.Time     `json:"occurred_at"`
}
