// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"lead_management_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published when an owner creates a lead.
type LeadCreated struct {
	BaseEvent
	LeadID  string `json:"leadId"`
	OwnerID string `json:"ownerId"`
	Source  string `json:"source"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadUpdated is published when an owner changes a lead.
type LeadUpdated struct {
	BaseEvent
	LeadID        string   `json:"leadId"`
	OwnerID       string   `json:"ownerId"`
	ChangedFields []string `json:"changedFields"`
}

func (e LeadUpdated) EventName() string { return "leads.lead.updated" }

// LeadDeleted is published when an owner deletes a lead.
type LeadDeleted struct {
	BaseEvent
	LeadID  string `json:"leadId"`
	OwnerID string `json:"ownerId"`
}

func (e LeadDeleted) EventName() string { return "leads.lead.deleted" }
