package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/dialog-engine/internal/domain"
)

const contextKeyPrefix = "dialog:context:"

// ErrVersionConflict signals that the stored context changed underneath the
// writer. Under the single-writer discipline this is a broken invariant,
// not a retryable condition.
var ErrVersionConflict = errors.New("conversation context version conflict")

// ErrContextNotFound signals an absent context.
var ErrContextNotFound = errors.New("conversation context not found")

// ContextStore persists per-user conversation contexts.
type ContextStore interface {
	Load(ctx context.Context, userID string) (*domain.ConversationContext, error)
	Save(ctx context.Context, conversation *domain.ConversationContext) error
	Reset(ctx context.Context, userID string) error
}

// redisContextStore keeps contexts as JSON values with a TTL refreshed on
// access and a version check on save.
type redisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewContextStore builds a redis-backed context store.
func NewContextStore(client *redis.Client, ttl time.Duration) ContextStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisContextStore{client: client, ttl: ttl}
}

// Load returns ErrContextNotFound for absent users; it never fabricates a
// context, that is the engine's decision.
func (s *redisContextStore) Load(ctx context.Context, userID string) (*domain.ConversationContext, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if err == redis.Nil {
		return nil, ErrContextNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load context: %w", err)
	}

	var conversation domain.ConversationContext
	if err := json.Unmarshal([]byte(val), &conversation); err != nil {
		return nil, fmt.Errorf("decode context: %w", err)
	}
	_ = s.client.Expire(ctx, s.key(userID), s.ttl).Err()
	return &conversation, nil
}

// Save persists the context after verifying its version still matches the
// stored copy, using WATCH/MULTI/EXEC. A mismatch means a second writer got
// in and returns ErrVersionConflict.
func (s *redisContextStore) Save(ctx context.Context, conversation *domain.ConversationContext) error {
	key := s.key(conversation.UserID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		if err == nil {
			var stored domain.ConversationContext
			if decodeErr := json.Unmarshal([]byte(val), &stored); decodeErr != nil {
				return fmt.Errorf("decode stored context: %w", decodeErr)
			}
			if stored.Version != conversation.Version {
				return ErrVersionConflict
			}
		}

		next := conversation.Clone()
		next.Version++
		next.UpdatedAt = time.Now()
		encoded, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode context: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		conversation.Version = next.Version
		conversation.UpdatedAt = next.UpdatedAt
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrVersionConflict
	}
	return err
}

// Reset removes the stored context entirely.
func (s *redisContextStore) Reset(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}

func (s *redisContextStore) key(userID string) string {
	return contextKeyPrefix + userID
}
