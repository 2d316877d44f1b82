package dto

import (
	"time"

	"github.com/spec-kit/dialog-engine/internal/domain"
)

// MessageRequest payload for the message ingress.
type MessageRequest struct {
	UserID    string     `json:"user_id"`
	Text      string     `json:"text"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// MessageResponse is the engine's answer for one turn.
type MessageResponse struct {
	Text      string       `json:"text"`
	Stage     domain.Stage `json:"stage"`
	Intent    string       `json:"intent"`
	TicketID  string       `json:"ticket_id,omitempty"`
	Escalated bool         `json:"escalated"`
	Duplicate bool         `json:"duplicate"`
}

// EventResponse is one lifecycle event record.
type EventResponse struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
