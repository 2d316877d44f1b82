package domain

import "time"

// TicketType enumerates escalation ticket categories.
type TicketType string

const (
	TicketTypeLegal     TicketType = "legal"
	TicketTypePrivacy   TicketType = "privacy"
	TicketTypeRefund    TicketType = "refund"
	TicketTypeComplaint TicketType = "complaint"
	TicketTypeSalesLead TicketType = "sales_lead"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusOverdue    TicketStatus = "overdue"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityP1 TicketPriority = "P1"
	TicketPriorityP2 TicketPriority = "P2"
	TicketPriorityP3 TicketPriority = "P3"
)

// ContextSnapshot captures the conversation state frozen into a ticket.
type ContextSnapshot struct {
	Slots        map[string]string `json:"slots"`
	LastMessages []Message         `json:"last_messages"`
	Stage        Stage             `json:"stage"`
}

// Ticket is the aggregate for human-handoff requests. Type, priority and
// SLA deadline are fixed at creation; only status and resolution metadata
// change afterwards.
type Ticket struct {
	ID              string          `json:"id"`
	ExternalKey     string          `json:"external_key"`
	UserID          string          `json:"user_id"`
	Type            TicketType      `json:"type"`
	Priority        TicketPriority  `json:"priority"`
	Summary         string          `json:"summary"`
	RequestedAction string          `json:"requested_action"`
	Snapshot        ContextSnapshot `json:"context_snapshot"`
	Status          TicketStatus    `json:"status"`
	SLADeadline     time.Time       `json:"sla_deadline"`
	CreatedAt       time.Time       `json:"created_at"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
}

// ExportRecord is the structured form handed to external ticketing/CRM
// systems.
type ExportRecord struct {
	ID          string          `json:"id"`
	Type        TicketType      `json:"type"`
	Priority    TicketPriority  `json:"priority"`
	SLADeadline time.Time       `json:"sla_deadline"`
	Summary     string          `json:"summary"`
	Snapshot    ContextSnapshot `json:"context_snapshot"`
	Status      TicketStatus    `json:"status"`
}

// Export serializes the ticket to its external-system record.
func (t *Ticket) Export() ExportRecord {
	return ExportRecord{
		ID:          t.ID,
		Type:        t.Type,
		Priority:    t.Priority,
		SLADeadline: t.SLADeadline,
		Summary:     t.Summary,
		Snapshot:    t.Snapshot,
		Status:      t.Status,
	}
}

// ticketStatusTransitions lists allowed status moves. Overdue tickets stay
// workable: they can still move to in_progress or resolved.
var ticketStatusTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusResolved, TicketStatusOverdue},
	TicketStatusInProgress: {TicketStatusResolved, TicketStatusOverdue},
	TicketStatusOverdue:    {TicketStatusInProgress, TicketStatusResolved},
	TicketStatusResolved:   {},
}

// ValidStatusTransition reports whether a ticket status change is legal.
func ValidStatusTransition(current, next TicketStatus) bool {
	for _, candidate := range ticketStatusTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
