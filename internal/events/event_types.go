package events

import (
	"time"

	"github.com/spec-kit/dialog-engine/internal/domain"
)

// EventType enumerates lifecycle events recorded for metric computation
// (FRT, containment, FCR are derived downstream from these).
type EventType string

const (
	EventConversationStarted EventType = "conversation_started"
	EventIntentClassified    EventType = "intent_classified"
	EventStageChanged        EventType = "funnel_stage_changed"
	EventEscalationTriggered EventType = "escalation_triggered"
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventSLABreach           EventType = "sla_breach"
	EventGenerationFailed    EventType = "generation_failed"
	EventResolutionCompleted EventType = "resolution_completed"
	EventContextReset        EventType = "context_reset"
)

// Event is an append-only lifecycle record. Never mutated after emission.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// IntentClassifiedPayload payload.
type IntentClassifiedPayload struct {
	Intent     string  `json:"intent"`
	Group      string  `json:"group"`
	Confidence float64 `json:"confidence"`
}

// StageChangedPayload payload.
type StageChangedPayload struct {
	OldStage domain.Stage `json:"old_stage"`
	NewStage domain.Stage `json:"new_stage"`
}

// EscalationTriggeredPayload payload.
type EscalationTriggeredPayload struct {
	Intent string `json:"intent"`
	Reason string `json:"reason"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID string                `json:"ticket_id"`
	Type     domain.TicketType     `json:"type"`
	Priority domain.TicketPriority `json:"priority"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	TicketID  string              `json:"ticket_id"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// SLABreachPayload payload.
type SLABreachPayload struct {
	TicketID    string            `json:"ticket_id"`
	Type        domain.TicketType `json:"type"`
	SLADeadline time.Time         `json:"sla_deadline"`
}

// GenerationFailedPayload payload.
type GenerationFailedPayload struct {
	Stage  domain.Stage `json:"stage"`
	Reason string       `json:"reason"`
}

// ResolutionCompletedPayload payload.
type ResolutionCompletedPayload struct {
	Status string `json:"status"`
}
