package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/dialog-engine/internal/events"
)

// EventRepository appends lifecycle events. The table is append-only; there
// is deliberately no update or delete operation.
type EventRepository interface {
	Append(ctx context.Context, event events.Event) error
	ListByUser(ctx context.Context, userID string, limit int) ([]events.Event, error)
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository instantiates repository.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

func (r *eventRepository) Append(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}
	const query = `
        INSERT INTO events (id, event_type, user_id, payload, created_at)
        VALUES ($1,$2,$3,$4,$5)`
	_, err = r.pool.Exec(ctx, query, event.ID, event.Type, event.UserID, payload, event.Timestamp)
	return err
}

func (r *eventRepository) ListByUser(ctx context.Context, userID string, limit int) ([]events.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
        SELECT id, event_type, user_id, payload, created_at
        FROM events WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []events.Event
	for rows.Next() {
		var event events.Event
		var payload []byte
		if err := rows.Scan(&event.ID, &event.Type, &event.UserID, &payload, &event.Timestamp); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			var decoded any
			if err := json.Unmarshal(payload, &decoded); err == nil {
				event.Payload = decoded
			}
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
