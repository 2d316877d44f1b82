package handoff

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/dialog-engine/internal/domain"
	"github.com/spec-kit/dialog-engine/internal/events"
	"github.com/spec-kit/dialog-engine/internal/repository"
)

// fakeTicketRepo is an in-memory TicketRepository with injectable failures.
type fakeTicketRepo struct {
	mu           sync.Mutex
	failuresLeft int
	tickets      map[string]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failuresLeft > 0 {
		r.failuresLeft--
		return errors.New("store unavailable")
	}
	dup := *ticket
	r.tickets[ticket.ID] = &dup
	return nil
}

func (r *fakeTicketRepo) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, resolvedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Status = status
	ticket.ResolvedAt = resolvedAt
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	dup := *ticket
	return &dup, nil
}

func (r *fakeTicketRepo) ListBreached(ctx context.Context, now time.Time) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var breached []domain.Ticket
	for _, ticket := range r.tickets {
		active := ticket.Status == domain.TicketStatusOpen || ticket.Status == domain.TicketStatusInProgress
		if active && ticket.SLADeadline.Before(now) {
			breached = append(breached, *ticket)
		}
	}
	return breached, nil
}

func (r *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		result = append(result, *ticket)
	}
	return result, nil
}

func (r *fakeTicketRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tickets)
}

func newTestManager(repo repository.TicketRepository, dispatcher events.Dispatcher, now time.Time) *TicketManager {
	return NewTicketManager(TicketManagerOptions{
		Tickets:    repo,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
		Attempts:   3,
		Backoff:    time.Millisecond,
		Now:        func() time.Time { return now },
	})
}

func TestSLAFor(t *testing.T) {
	tests := []struct {
		ticketType domain.TicketType
		priority   domain.TicketPriority
		duration   time.Duration
	}{
		{domain.TicketTypeLegal, domain.TicketPriorityP1, 4 * time.Hour},
		{domain.TicketTypePrivacy, domain.TicketPriorityP1, 4 * time.Hour},
		{domain.TicketTypeRefund, domain.TicketPriorityP1, 4 * time.Hour},
		{domain.TicketTypeComplaint, domain.TicketPriorityP2, 24 * time.Hour},
		{domain.TicketTypeSalesLead, domain.TicketPriorityP3, 72 * time.Hour},
	}
	for _, tt := range tests {
		priority, duration := SLAFor(tt.ticketType)
		assert.Equal(t, tt.priority, priority, string(tt.ticketType))
		assert.Equal(t, tt.duration, duration, string(tt.ticketType))
	}
}

func TestCreateTicketSLADeadline(t *testing.T) {
	repo := newFakeTicketRepo()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	manager := newTestManager(repo, events.NewInMemoryDispatcher(), now)

	for ticketType, entry := range map[domain.TicketType]time.Duration{
		domain.TicketTypeRefund:    4 * time.Hour,
		domain.TicketTypeComplaint: 24 * time.Hour,
		domain.TicketTypeSalesLead: 72 * time.Hour,
	} {
		ticket, err := manager.CreateTicket(context.Background(), "u1", ticketType, "summary", domain.ContextSnapshot{})
		require.NoError(t, err)
		assert.Equal(t, now.Add(entry), ticket.SLADeadline, string(ticketType))
		assert.Equal(t, now, ticket.CreatedAt)
		assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
		assert.NotEmpty(t, ticket.ExternalKey)
	}
}

func TestCreateTicketWithoutLoggerOrDispatcher(t *testing.T) {
	repo := newFakeTicketRepo()
	manager := NewTicketManager(TicketManagerOptions{Tickets: repo})

	ticket, err := manager.CreateTicket(context.Background(), "u1", domain.TicketTypeComplaint, "s", domain.ContextSnapshot{})
	require.NoError(t, err)
	require.NotNil(t, ticket)
	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, 1, repo.count())
}

func TestCreateTicketRetriesThenSucceeds(t *testing.T) {
	repo := newFakeTicketRepo()
	repo.failuresLeft = 2
	manager := newTestManager(repo, events.NewInMemoryDispatcher(), time.Now())

	ticket, err := manager.CreateTicket(context.Background(), "u1", domain.TicketTypeComplaint, "s", domain.ContextSnapshot{})
	require.NoError(t, err)
	require.NotNil(t, ticket)
	assert.Equal(t, 1, repo.count())
	assert.Empty(t, manager.PendingReconciliation())
}

func TestCreateTicketExhaustionQueuesReconciliation(t *testing.T) {
	repo := newFakeTicketRepo()
	repo.failuresLeft = 10
	manager := newTestManager(repo, events.NewInMemoryDispatcher(), time.Now())

	ticket, err := manager.CreateTicket(context.Background(), "u1", domain.TicketTypeRefund, "s", domain.ContextSnapshot{})
	require.ErrorIs(t, err, ErrTicketRetryExhausted)
	require.NotNil(t, ticket, "caller still gets the ticket to acknowledge the user")
	assert.Equal(t, 0, repo.count())

	// Store heals; the queued ticket is replayed.
	repo.mu.Lock()
	repo.failuresLeft = 0
	repo.mu.Unlock()
	assert.Equal(t, 1, manager.RetryReconciliation(context.Background()))
	assert.Equal(t, 1, repo.count())
	assert.Empty(t, manager.PendingReconciliation())
}

func TestUpdateStatusValidatesTransition(t *testing.T) {
	repo := newFakeTicketRepo()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	manager := newTestManager(repo, events.NewInMemoryDispatcher(), now)

	ticket, err := manager.CreateTicket(context.Background(), "u1", domain.TicketTypeComplaint, "s", domain.ContextSnapshot{})
	require.NoError(t, err)

	updated, err := manager.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	assert.Equal(t, now, *updated.ResolvedAt)

	_, err = manager.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusInProgress)
	assert.Error(t, err, "resolved is terminal")
}

func TestCreateTicketEmitsEvent(t *testing.T) {
	repo := newFakeTicketRepo()
	dispatcher := events.NewInMemoryDispatcher()
	var created []events.Event
	dispatcher.Subscribe(events.EventTicketCreated, func(ctx context.Context, event events.Event) error {
		created = append(created, event)
		return nil
	})
	manager := newTestManager(repo, dispatcher, time.Now())

	ticket, err := manager.CreateTicket(context.Background(), "u1", domain.TicketTypeSalesLead, "s", domain.ContextSnapshot{})
	require.NoError(t, err)
	require.Len(t, created, 1)
	payload, ok := created[0].Payload.(events.TicketCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, ticket.ID, payload.TicketID)
	assert.Equal(t, domain.TicketPriorityP3, payload.Priority)
}

func TestBuildSnapshot(t *testing.T) {
	conversation := domain.NewConversationContext("u1", time.Now())
	conversation.Slots[domain.SlotOrderID] = domain.Slot{Name: domain.SlotOrderID, Value: "12345"}
	for i := 0; i < 8; i++ {
		conversation.RecordMessage("user", "сообщение", 10)
	}
	conversation.MoveTo(domain.StageQualification)

	snapshot := BuildSnapshot(conversation)
	assert.Equal(t, "12345", snapshot.Slots[domain.SlotOrderID])
	assert.Len(t, snapshot.LastMessages, 5)
	assert.Equal(t, domain.StageQualification, snapshot.Stage)
}
