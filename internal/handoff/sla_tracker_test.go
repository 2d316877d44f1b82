package handoff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/dialog-engine/internal/domain"
	"github.com/spec-kit/dialog-engine/internal/events"
)

func TestSweepMarksBreachedTickets(t *testing.T) {
	repo := newFakeTicketRepo()
	dispatcher := events.NewInMemoryDispatcher()
	var breaches []events.Event
	dispatcher.Subscribe(events.EventSLABreach, func(ctx context.Context, event events.Event) error {
		breaches = append(breaches, event)
		return nil
	})

	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	manager := newTestManager(repo, nil, created)

	refund, err := manager.CreateTicket(context.Background(), "u1", domain.TicketTypeRefund, "s", domain.ContextSnapshot{})
	require.NoError(t, err)
	lead, err := manager.CreateTicket(context.Background(), "u2", domain.TicketTypeSalesLead, "s", domain.ContextSnapshot{})
	require.NoError(t, err)

	tracker := NewSLATracker(repo, dispatcher, zap.NewNop())

	// 5 hours in: only the 4h refund SLA is blown.
	marked, err := tracker.Sweep(context.Background(), created.Add(5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, marked)
	require.Len(t, breaches, 1)

	payload, ok := breaches[0].Payload.(events.SLABreachPayload)
	require.True(t, ok)
	assert.Equal(t, refund.ID, payload.TicketID)

	stored, err := repo.GetByID(context.Background(), refund.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOverdue, stored.Status)

	unbreached, err := repo.GetByID(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, unbreached.Status)
}

func TestSweepNeverResolves(t *testing.T) {
	repo := newFakeTicketRepo()
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	manager := newTestManager(repo, nil, created)

	ticket, err := manager.CreateTicket(context.Background(), "u1", domain.TicketTypeComplaint, "s", domain.ContextSnapshot{})
	require.NoError(t, err)

	tracker := NewSLATracker(repo, events.NewInMemoryDispatcher(), zap.NewNop())
	_, err = tracker.Sweep(context.Background(), created.Add(48*time.Hour))
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOverdue, stored.Status)
	assert.Nil(t, stored.ResolvedAt)
}

func TestSweepIdempotent(t *testing.T) {
	repo := newFakeTicketRepo()
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	manager := newTestManager(repo, nil, created)

	_, err := manager.CreateTicket(context.Background(), "u1", domain.TicketTypeRefund, "s", domain.ContextSnapshot{})
	require.NoError(t, err)

	tracker := NewSLATracker(repo, events.NewInMemoryDispatcher(), zap.NewNop())
	marked, err := tracker.Sweep(context.Background(), created.Add(5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	// Overdue tickets are not re-marked on the next sweep.
	marked, err = tracker.Sweep(context.Background(), created.Add(6*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, marked)
}
