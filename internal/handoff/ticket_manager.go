package handoff

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/dialog-engine/internal/domain"
	"github.com/spec-kit/dialog-engine/internal/events"
	"github.com/spec-kit/dialog-engine/internal/repository"
)

// ErrTicketRetryExhausted signals that the store stayed unavailable through
// every attempt; the ticket is queued for manual reconciliation.
var ErrTicketRetryExhausted = errors.New("ticket creation retries exhausted")

// slaEntry fixes priority and deadline duration per ticket type.
type slaEntry struct {
	priority domain.TicketPriority
	duration time.Duration
}

// slaTable is the fixed per-type priority/SLA table.
var slaTable = map[domain.TicketType]slaEntry{
	domain.TicketTypeLegal:     {domain.TicketPriorityP1, 4 * time.Hour},
	domain.TicketTypePrivacy:   {domain.TicketPriorityP1, 4 * time.Hour},
	domain.TicketTypeRefund:    {domain.TicketPriorityP1, 4 * time.Hour},
	domain.TicketTypeComplaint: {domain.TicketPriorityP2, 24 * time.Hour},
	domain.TicketTypeSalesLead: {domain.TicketPriorityP3, 72 * time.Hour},
}

// SLAFor returns the priority and deadline duration for a ticket type.
// Unknown types get the lowest urgency.
func SLAFor(ticketType domain.TicketType) (domain.TicketPriority, time.Duration) {
	if entry, ok := slaTable[ticketType]; ok {
		return entry.priority, entry.duration
	}
	return domain.TicketPriorityP3, 72 * time.Hour
}

// defaultActions name the operator action requested per ticket type.
var defaultActions = map[domain.TicketType]string{
	domain.TicketTypePrivacy:   "process_data_request",
	domain.TicketTypeLegal:     "legal_review",
	domain.TicketTypeRefund:    "process_refund",
	domain.TicketTypeComplaint: "investigate_complaint",
	domain.TicketTypeSalesLead: "call_back",
}

// DefaultAction returns the requested operator action for a ticket type.
func DefaultAction(ticketType domain.TicketType) string {
	if action, ok := defaultActions[ticketType]; ok {
		return action
	}
	return "review"
}

// TicketManager creates and tracks human-handoff tickets.
type TicketManager struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	attempts   int
	backoff    time.Duration
	now        func() time.Time

	mu        sync.Mutex
	reconcile []domain.Ticket
}

// TicketManagerOptions bundles construction parameters.
type TicketManagerOptions struct {
	Tickets    repository.TicketRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Attempts   int
	Backoff    time.Duration
	Now        func() time.Time
}

// NewTicketManager constructs the manager.
func NewTicketManager(opts TicketManagerOptions) *TicketManager {
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketManager{
		tickets:    opts.Tickets,
		dispatcher: opts.Dispatcher,
		logger:     logger,
		attempts:   attempts,
		backoff:    backoff,
		now:        now,
	}
}

// CreateTicket builds a ticket with the fixed priority/SLA for its type and
// persists it, retrying with exponential backoff on store failure. On
// exhaustion the ticket is queued for manual reconciliation and
// ErrTicketRetryExhausted is returned together with the unsaved ticket so
// the caller can still acknowledge the user.
func (m *TicketManager) CreateTicket(ctx context.Context, userID string, ticketType domain.TicketType, summary string, snapshot domain.ContextSnapshot) (*domain.Ticket, error) {
	priority, duration := SLAFor(ticketType)
	createdAt := m.now()

	ticket := &domain.Ticket{
		ID:              uuid.NewString(),
		ExternalKey:     generateTicketKey(),
		UserID:          userID,
		Type:            ticketType,
		Priority:        priority,
		Summary:         summary,
		RequestedAction: DefaultAction(ticketType),
		Snapshot:        snapshot,
		Status:          domain.TicketStatusOpen,
		SLADeadline:     createdAt.Add(duration),
		CreatedAt:       createdAt,
	}

	var lastErr error
	delay := m.backoff
	for attempt := 1; attempt <= m.attempts; attempt++ {
		lastErr = m.tickets.Create(ctx, ticket)
		if lastErr == nil {
			m.publish(ctx, events.Event{
				Type:   events.EventTicketCreated,
				UserID: userID,
				Payload: events.TicketCreatedPayload{
					TicketID: ticket.ID,
					Type:     ticket.Type,
					Priority: ticket.Priority,
				},
			})
			return ticket, nil
		}
		m.logger.Warn("ticket create failed",
			zap.Int("attempt", attempt),
			zap.String("ticket_type", string(ticketType)),
			zap.Error(lastErr))
		if attempt < m.attempts {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}
	}

	m.mu.Lock()
	m.reconcile = append(m.reconcile, *ticket)
	m.mu.Unlock()
	m.logger.Error("ticket queued for manual reconciliation",
		zap.String("ticket_id", ticket.ID),
		zap.Error(lastErr))
	return ticket, fmt.Errorf("%w: %v", ErrTicketRetryExhausted, lastErr)
}

// UpdateStatus applies a validated status transition and emits the change.
func (m *TicketManager) UpdateStatus(ctx context.Context, id string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := m.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.ValidStatusTransition(ticket.Status, newStatus) {
		return nil, fmt.Errorf("invalid ticket status transition %s -> %s", ticket.Status, newStatus)
	}

	oldStatus := ticket.Status
	var resolvedAt *time.Time
	if newStatus == domain.TicketStatusResolved {
		now := m.now()
		resolvedAt = &now
	}
	if err := m.tickets.UpdateStatus(ctx, id, newStatus, resolvedAt); err != nil {
		return nil, err
	}
	ticket.Status = newStatus
	ticket.ResolvedAt = resolvedAt

	m.publish(ctx, events.Event{
		Type:   events.EventTicketStatusChanged,
		UserID: ticket.UserID,
		Payload: events.TicketStatusChangedPayload{
			TicketID:  ticket.ID,
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return ticket, nil
}

// PendingReconciliation drains tickets awaiting manual replay after store
// outage.
func (m *TicketManager) PendingReconciliation() []domain.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending := m.reconcile
	m.reconcile = nil
	return pending
}

// RetryReconciliation attempts to persist queued tickets again. Tickets that
// still fail are re-queued.
func (m *TicketManager) RetryReconciliation(ctx context.Context) int {
	pending := m.PendingReconciliation()
	saved := 0
	for i := range pending {
		ticket := pending[i]
		if err := m.tickets.Create(ctx, &ticket); err != nil {
			m.mu.Lock()
			m.reconcile = append(m.reconcile, ticket)
			m.mu.Unlock()
			continue
		}
		saved++
		m.publish(ctx, events.Event{
			Type:   events.EventTicketCreated,
			UserID: ticket.UserID,
			Payload: events.TicketCreatedPayload{
				TicketID: ticket.ID,
				Type:     ticket.Type,
				Priority: ticket.Priority,
			},
		})
	}
	return saved
}

func (m *TicketManager) publish(ctx context.Context, event events.Event) {
	if m.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = m.now()
	}
	if err := m.dispatcher.Publish(ctx, event); err != nil {
		m.logger.Warn("event publish failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func generateTicketKey() string {
	return "HND-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// BuildSnapshot freezes the conversation state into a ticket snapshot:
// collected slots plus the last messages, truncated.
func BuildSnapshot(conversation *domain.ConversationContext) domain.ContextSnapshot {
	slots := make(map[string]string, len(conversation.Slots))
	for name, slot := range conversation.Slots {
		slots[name] = slot.Value
	}

	history := conversation.History
	if len(history) > 5 {
		history = history[len(history)-5:]
	}
	messages := make([]domain.Message, 0, len(history))
	for _, msg := range history {
		messages = append(messages, domain.Message{
			Role:    msg.Role,
			Content: truncateRunes(msg.Content, 200),
		})
	}

	return domain.ContextSnapshot{
		Slots:        slots,
		LastMessages: messages,
		Stage:        conversation.CurrentStage,
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
