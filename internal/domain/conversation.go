package domain

import "time"

// Utterance is a single inbound message. Immutable once received.
type Utterance struct {
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Message is one history entry kept in the conversation window.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ConversationContext is the per-user mutable state consumed and produced
// by every pipeline component. One per user; created on first message,
// reset only on explicit user request.
type ConversationContext struct {
	UserID       string          `json:"user_id"`
	CurrentStage Stage           `json:"current_stage"`
	Slots        map[string]Slot `json:"slots"`
	LastIntents  []Intent        `json:"last_intents"`
	History      []Message       `json:"history"`
	Turn         int             `json:"turn"`
	StageEntries map[Stage]int   `json:"stage_entries"`
	OpenTicketID string          `json:"open_ticket_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// Version implements optimistic single-writer detection at the store.
	Version int64 `json:"version"`
}

// NewConversationContext creates a fresh context in the initial stage.
func NewConversationContext(userID string, now time.Time) *ConversationContext {
	return &ConversationContext{
		UserID:       userID,
		CurrentStage: StageAcquisition,
		Slots:        make(map[string]Slot),
		StageEntries: make(map[Stage]int),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// RecordIntent appends an intent to the bounded recent-intent window.
func (c *ConversationContext) RecordIntent(intent Intent, window int) {
	c.LastIntents = append(c.LastIntents, intent)
	if window > 0 && len(c.LastIntents) > window {
		c.LastIntents = c.LastIntents[len(c.LastIntents)-window:]
	}
}

// RecordMessage appends a history entry bounded to the same window.
func (c *ConversationContext) RecordMessage(role, content string, window int) {
	c.History = append(c.History, Message{Role: role, Content: content})
	if window > 0 && len(c.History) > window*2 {
		c.History = c.History[len(c.History)-window*2:]
	}
}

// MoveTo transitions the context to a new stage and counts the entry.
func (c *ConversationContext) MoveTo(stage Stage) {
	if c.CurrentStage == stage {
		return
	}
	c.CurrentStage = stage
	c.StageEntries[stage]++
}

// SlotValue returns the value of a named slot, or "" when absent.
func (c *ConversationContext) SlotValue(name string) string {
	if slot, ok := c.Slots[name]; ok {
		return slot.Value
	}
	return ""
}

// HasSlot reports whether a named slot holds a non-empty value.
func (c *ConversationContext) HasSlot(name string) bool {
	return c.SlotValue(name) != ""
}

// Clone returns a deep copy used as the working state for a turn, so that
// slot merges and stage transitions commit only when the turn completes.
func (c *ConversationContext) Clone() *ConversationContext {
	dup := *c
	dup.Slots = make(map[string]Slot, len(c.Slots))
	for name, slot := range c.Slots {
		dup.Slots[name] = slot
	}
	dup.StageEntries = make(map[Stage]int, len(c.StageEntries))
	for stage, n := range c.StageEntries {
		dup.StageEntries[stage] = n
	}
	dup.LastIntents = append([]Intent(nil), c.LastIntents...)
	dup.History = append([]Message(nil), c.History...)
	return &dup
}
