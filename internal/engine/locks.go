package engine

import (
	"context"
	"sync"
)

// userLocks enforces the single-writer rule per user. An overlapping turn
// for the same user waits its turn instead of failing; waiters honor their
// context deadline.
type userLocks struct {
	mu    sync.Mutex
	slots map[string]*userSlot
}

type userSlot struct {
	ch   chan struct{}
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{slots: make(map[string]*userSlot)}
}

// acquire blocks until the user's slot is free or ctx expires.
func (l *userLocks) acquire(ctx context.Context, userID string) error {
	l.mu.Lock()
	slot, ok := l.slots[userID]
	if !ok {
		slot = &userSlot{ch: make(chan struct{}, 1)}
		l.slots[userID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.drop(userID)
		return ctx.Err()
	}
}

func (l *userLocks) release(userID string) {
	l.mu.Lock()
	slot, ok := l.slots[userID]
	l.mu.Unlock()
	if !ok {
		return
	}
	<-slot.ch
	l.drop(userID)
}

func (l *userLocks) drop(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[userID]
	if !ok {
		return
	}
	slot.refs--
	if slot.refs <= 0 {
		delete(l.slots, userID)
	}
}
