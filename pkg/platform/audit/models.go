package audit

import (
	"context"
	"time"

	id "statusreg/pkg/domain"
)

// EventCategory classifies audit events by retention and routing needs.
type EventCategory string

const (
	// CategoryCompliance covers changes to published credential status.
	// Relying parties depend on this trail, so it is never sampled.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers rejected mutations worth alerting on.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine reads.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	OwnerID   id.OwnerID    `json:"owner_id"`
	Action    string        `json:"action"`
	Purpose   string        `json:"purpose,omitempty"`
	Size      uint16        `json:"size,omitempty"`
	// Location and Value are set for entry events only.
	Location *uint32 `json:"location,omitempty"`
	Value    *uint8  `json:"value,omitempty"`
	Reason   string  `json:"reason,omitempty"`

	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	// Client is a coarse "Browser on OS" descriptor derived from the User-Agent.
	Client string `json:"client,omitempty"`
}

type AuditEvent string

const (
	EventStatusListCreated  AuditEvent = "status_list_created"
	EventEntryToggled       AuditEvent = "status_list_entry_toggled"
	EventToggleRejected     AuditEvent = "status_list_toggle_rejected"
	EventEntryRead          AuditEvent = "status_list_entry_read"
	EventStatusListReturned AuditEvent = "status_list_returned"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventStatusListCreated:  CategoryCompliance,
	EventEntryToggled:       CategoryCompliance,
	EventToggleRejected:     CategorySecurity,
	EventEntryRead:          CategoryOperations,
	EventStatusListReturned: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store is an append-only sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister is implemented by sinks that can be queried back, such as the
// in-memory and PostgreSQL stores.
type Lister interface {
	ListByOwner(ctx context.Context, ownerID id.OwnerID) ([]Event, error)
}
