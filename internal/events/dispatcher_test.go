package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(eventType EventType) Event {
	return Event{
		ID:        "evt-1",
		Type:      eventType,
		UserID:    "u-1",
		Timestamp: time.Now(),
	}
}

func TestPublishInvokesTypedSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var got []EventType
	dispatcher.Subscribe(EventTicketCreated, func(ctx context.Context, event Event) error {
		got = append(got, event.Type)
		return nil
	})
	dispatcher.Subscribe(EventSLABreach, func(ctx context.Context, event Event) error {
		got = append(got, event.Type)
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), testEvent(EventTicketCreated)))
	assert.Equal(t, []EventType{EventTicketCreated}, got)
}

func TestPublishInvokesCatchAllForEveryType(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var count int
	dispatcher.SubscribeAll(func(ctx context.Context, event Event) error {
		count++
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), testEvent(EventConversationStarted)))
	require.NoError(t, dispatcher.Publish(context.Background(), testEvent(EventStageChanged)))
	assert.Equal(t, 2, count)
}

func TestPublishReturnsFirstErrorAndKeepsGoing(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	first := errors.New("first failure")
	dispatcher.Subscribe(EventTicketCreated, func(ctx context.Context, event Event) error {
		return first
	})
	dispatcher.Subscribe(EventTicketCreated, func(ctx context.Context, event Event) error {
		return errors.New("second failure")
	})

	var catchAllRan bool
	dispatcher.SubscribeAll(func(ctx context.Context, event Event) error {
		catchAllRan = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), testEvent(EventTicketCreated))
	assert.ErrorIs(t, err, first)
	assert.True(t, catchAllRan)
}

func TestPublishWithNoSubscribersIsNoop(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	assert.NoError(t, dispatcher.Publish(context.Background(), testEvent(EventContextReset)))
}
