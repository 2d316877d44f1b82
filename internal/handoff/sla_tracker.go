package handoff

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/dialog-engine/internal/domain"
	"github.com/spec-kit/dialog-engine/internal/events"
	"github.com/spec-kit/dialog-engine/internal/repository"
)

// SLATracker marks tickets that blew their deadline. It never resolves a
// ticket on its own; overdue tickets stay in the operator's queue.
type SLATracker struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewSLATracker constructs the tracker.
func NewSLATracker(tickets repository.TicketRepository, dispatcher events.Dispatcher, logger *zap.Logger) *SLATracker {
	return &SLATracker{tickets: tickets, dispatcher: dispatcher, logger: logger}
}

// Sweep marks every open or in-progress ticket whose deadline passed as
// overdue and emits an sla_breach event per ticket. Returns the number of
// tickets marked.
func (t *SLATracker) Sweep(ctx context.Context, now time.Time) (int, error) {
	breached, err := t.tickets.ListBreached(ctx, now)
	if err != nil {
		return 0, err
	}

	marked := 0
	for i := range breached {
		ticket := &breached[i]
		if err := t.tickets.UpdateStatus(ctx, ticket.ID, domain.TicketStatusOverdue, nil); err != nil {
			t.logger.Warn("failed to mark ticket overdue",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
			continue
		}
		marked++
		t.logger.Info("sla breached",
			zap.String("ticket_id", ticket.ID),
			zap.String("ticket_type", string(ticket.Type)),
			zap.Time("deadline", ticket.SLADeadline))
		if t.dispatcher != nil {
			_ = t.dispatcher.Publish(ctx, events.Event{
				ID:        uuid.NewString(),
				Type:      events.EventSLABreach,
				UserID:    ticket.UserID,
				Timestamp: now,
				Payload: events.SLABreachPayload{
					TicketID:    ticket.ID,
					Type:        ticket.Type,
					SLADeadline: ticket.SLADeadline,
				},
			})
		}
	}
	return marked, nil
}
