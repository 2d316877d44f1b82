// Package eventlog persists every dispatched lifecycle event to the
// append-only store. Downstream metric jobs (FRT, containment, FCR) read
// from that store; nothing in the engine ever reads it back.
package eventlog

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/dialog-engine/internal/events"
	"github.com/spec-kit/dialog-engine/internal/repository"
)

// Recorder subscribes to the dispatcher and appends each event.
type Recorder struct {
	store  repository.EventRepository
	logger *zap.Logger
}

// NewRecorder builds the recorder and attaches it to the dispatcher.
func NewRecorder(dispatcher events.Dispatcher, store repository.EventRepository, logger *zap.Logger) *Recorder {
	r := &Recorder{store: store, logger: logger}
	dispatcher.SubscribeAll(r.record)
	return r
}

// record appends one event. Persistence failures are logged, not propagated:
// losing one audit record must not fail the turn that produced it.
func (r *Recorder) record(ctx context.Context, event events.Event) error {
	if err := r.store.Append(ctx, event); err != nil {
		r.logger.Error("append event failed",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}
	return nil
}
