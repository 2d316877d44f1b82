package dto

import (
	"time"

	"github.com/spec-kit/dialog-engine/internal/domain"
)

// TicketSummary response.
type TicketSummary struct {
	ID          string                `json:"id"`
	ExternalKey string                `json:"external_key"`
	UserID      string                `json:"user_id"`
	Type        domain.TicketType     `json:"type"`
	Priority    domain.TicketPriority `json:"priority"`
	Summary     string                `json:"summary"`
	Status      domain.TicketStatus   `json:"status"`
	SLADeadline time.Time             `json:"sla_deadline"`
	CreatedAt   time.Time             `json:"created_at"`
	ResolvedAt  *time.Time            `json:"resolved_at,omitempty"`
}

// TicketDetailResponse provides full ticket info including the context
// snapshot captured at escalation time.
type TicketDetailResponse struct {
	TicketSummary
	RequestedAction string                 `json:"requested_action"`
	Snapshot        domain.ContextSnapshot `json:"context_snapshot"`
}

// UpdateTicketStatusRequest payload.
type UpdateTicketStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}
