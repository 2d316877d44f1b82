package eventlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/dialog-engine/internal/events"
)

type memEventStore struct {
	appended []events.Event
	failWith error
}

func (s *memEventStore) Append(ctx context.Context, event events.Event) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.appended = append(s.appended, event)
	return nil
}

func (s *memEventStore) ListByUser(ctx context.Context, userID string, limit int) ([]events.Event, error) {
	return s.appended, nil
}

func TestRecorderAppendsDispatchedEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	store := &memEventStore{}
	NewRecorder(dispatcher, store, zap.NewNop())

	event := events.Event{
		ID:        "evt-1",
		Type:      events.EventTicketCreated,
		UserID:    "u-1",
		Timestamp: time.Now(),
	}
	require.NoError(t, dispatcher.Publish(context.Background(), event))

	require.Len(t, store.appended, 1)
	assert.Equal(t, "evt-1", store.appended[0].ID)
}

func TestRecorderSwallowsStoreFailures(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	store := &memEventStore{failWith: errors.New("db down")}
	NewRecorder(dispatcher, store, zap.NewNop())

	event := events.Event{ID: "evt-1", Type: events.EventSLABreach, UserID: "u-1"}
	assert.NoError(t, dispatcher.Publish(context.Background(), event))
}
