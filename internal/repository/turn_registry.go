package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/dialog-engine/internal/domain"
)

const turnKeyPrefix = "dialog:turn:"

// TurnRegistry provides exactly-once turn processing: a turn key is claimed
// before side effects are emitted, so replaying the same utterance against
// the same context cannot create duplicate tickets or events.
type TurnRegistry interface {
	// Claim marks the turn as processed. Returns false when the turn was
	// already claimed, along with the outcome recorded for it.
	Claim(ctx context.Context, utterance domain.Utterance) (bool, string, error)
	// RecordOutcome stores the response text for an already-claimed turn so
	// replays can answer without reprocessing.
	RecordOutcome(ctx context.Context, utterance domain.Utterance, outcome string) error
	// Release frees a claimed turn whose processing failed, so redelivery
	// reprocesses it instead of replaying an empty outcome.
	Release(ctx context.Context, utterance domain.Utterance) error
}

type redisTurnRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTurnRegistry builds a redis-backed turn registry.
func NewTurnRegistry(client *redis.Client, ttl time.Duration) TurnRegistry {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisTurnRegistry{client: client, ttl: ttl}
}

func (r *redisTurnRegistry) Claim(ctx context.Context, utterance domain.Utterance) (bool, string, error) {
	key := turnKey(utterance)
	claimed, err := r.client.SetNX(ctx, key, "", r.ttl).Result()
	if err != nil {
		return false, "", fmt.Errorf("claim turn: %w", err)
	}
	if claimed {
		return true, "", nil
	}
	outcome, err := r.client.Get(ctx, key).Result()
	if err != nil && err != redis.Nil {
		return false, "", fmt.Errorf("load turn outcome: %w", err)
	}
	return false, outcome, nil
}

func (r *redisTurnRegistry) RecordOutcome(ctx context.Context, utterance domain.Utterance, outcome string) error {
	return r.client.Set(ctx, turnKey(utterance), outcome, r.ttl).Err()
}

func (r *redisTurnRegistry) Release(ctx context.Context, utterance domain.Utterance) error {
	return r.client.Del(ctx, turnKey(utterance)).Err()
}

// turnKey derives a stable identity for one delivered utterance from the
// user, timestamp and text hash.
func turnKey(utterance domain.Utterance) string {
	sum := sha256.Sum256([]byte(utterance.Text))
	return fmt.Sprintf("%s%s:%d:%s",
		turnKeyPrefix,
		utterance.UserID,
		utterance.Timestamp.UnixNano(),
		hex.EncodeToString(sum[:8]))
}
