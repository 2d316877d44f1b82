// Package engine orchestrates one conversation turn end to end: claim the
// turn, classify, extract slots, run the escalation gate, try the knowledge
// fast path, drive the funnel and commit the updated context. All state
// mutation happens on a working copy that is persisted once, at the end of
// the turn, so a mid-turn failure never leaves a half-updated context.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/dialog-engine/internal/domain"
	"github.com/spec-kit/dialog-engine/internal/events"
	"github.com/spec-kit/dialog-engine/internal/funnel"
	"github.com/spec-kit/dialog-engine/internal/generator"
	"github.com/spec-kit/dialog-engine/internal/handoff"
	"github.com/spec-kit/dialog-engine/internal/knowledge"
	"github.com/spec-kit/dialog-engine/internal/nlu"
	"github.com/spec-kit/dialog-engine/internal/repository"
)

// fallbackAnswer is used when generation fails and the directive carries no
// fixed fallback of its own.
const fallbackAnswer = "Извините, не получилось сформировать ответ. Попробуйте переформулировать или напишите «оператор»."

// Response is the outcome of one processed turn.
type Response struct {
	Text      string        `json:"text"`
	Stage     domain.Stage  `json:"stage"`
	Intent    domain.Intent `json:"intent"`
	TicketID  string        `json:"ticket_id,omitempty"`
	Escalated bool          `json:"escalated"`
	Duplicate bool          `json:"duplicate"`
}

// Options bundles the engine's dependencies.
type Options struct {
	Classifier *nlu.Classifier
	Extractor  *nlu.Extractor
	Gate       *handoff.Gate
	Tickets    *handoff.TicketManager
	Router     *funnel.Router
	Knowledge  *knowledge.Base
	Generator  generator.Generator
	Contexts   repository.ContextStore
	Turns      repository.TurnRegistry
	Dispatcher events.Dispatcher
	Logger     *zap.Logger

	HistoryWindow     int
	FastPathThreshold float64
	GenerateTimeout   time.Duration

	// Now is replaceable in tests. Defaults to time.Now.
	Now func() time.Time
}

// Engine is the turn pipeline. Safe for concurrent use; overlapping turns
// for the same user are queued behind a per-user lock.
type Engine struct {
	classifier *nlu.Classifier
	extractor  *nlu.Extractor
	gate       *handoff.Gate
	tickets    *handoff.TicketManager
	router     *funnel.Router
	kb         *knowledge.Base
	generator  generator.Generator
	contexts   repository.ContextStore
	turns      repository.TurnRegistry
	dispatcher events.Dispatcher
	logger     *zap.Logger

	historyWindow     int
	fastPathThreshold float64
	generateTimeout   time.Duration
	now               func() time.Time

	locks *userLocks

	// dirty holds contexts whose last save failed; the next turn for the
	// user works from the dirty copy and retries persistence at commit.
	dirtyMu sync.Mutex
	dirty   map[string]*domain.ConversationContext
}

// New builds the engine from its dependency bundle.
func New(opts Options) *Engine {
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = 5
	}
	if opts.FastPathThreshold <= 0 {
		opts.FastPathThreshold = 0.7
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		classifier:        opts.Classifier,
		extractor:         opts.Extractor,
		gate:              opts.Gate,
		tickets:           opts.Tickets,
		router:            opts.Router,
		kb:                opts.Knowledge,
		generator:         opts.Generator,
		contexts:          opts.Contexts,
		turns:             opts.Turns,
		dispatcher:        opts.Dispatcher,
		logger:            opts.Logger,
		historyWindow:     opts.HistoryWindow,
		fastPathThreshold: opts.FastPathThreshold,
		generateTimeout:   opts.GenerateTimeout,
		now:               opts.Now,
		locks:             newUserLocks(),
		dirty:             make(map[string]*domain.ConversationContext),
	}
}

// HandleUtterance processes one delivered user message and returns the
// response to send back.
func (e *Engine) HandleUtterance(ctx context.Context, utterance domain.Utterance) (*Response, error) {
	if err := e.locks.acquire(ctx, utterance.UserID); err != nil {
		return nil, err
	}
	defer e.locks.release(utterance.UserID)

	claimed, priorOutcome, err := e.turns.Claim(ctx, utterance)
	if err != nil {
		return nil, err
	}
	// A claim with no recorded outcome means the previous attempt died
	// before committing; reprocess rather than replay an empty answer.
	if !claimed && priorOutcome != "" {
		e.logger.Info("duplicate turn, replaying recorded outcome",
			zap.String("user_id", utterance.UserID))
		return &Response{Text: priorOutcome, Duplicate: true}, nil
	}

	response, err := e.processTurn(ctx, utterance)
	if err != nil {
		// A failed turn stays retryable: give the claim back so redelivery
		// reprocesses the message instead of replaying nothing.
		if rerr := e.turns.Release(ctx, utterance); rerr != nil {
			e.logger.Warn("release turn claim failed",
				zap.String("user_id", utterance.UserID), zap.Error(rerr))
		}
		return nil, err
	}
	return response, nil
}

func (e *Engine) processTurn(ctx context.Context, utterance domain.Utterance) (*Response, error) {
	working := e.loadWorkingCopy(ctx, utterance.UserID)
	working.Turn++
	working.UpdatedAt = e.now()
	working.RecordMessage("user", utterance.Text, e.historyWindow)

	intent := e.classifier.Classify(utterance.Text, working.History)
	working.RecordIntent(intent, e.historyWindow)
	e.emit(ctx, events.EventIntentClassified, utterance.UserID, events.IntentClassifiedPayload{
		Intent:     intent.Name,
		Group:      intent.Group.String(),
		Confidence: intent.Confidence,
	})

	updates := e.extractor.Extract(utterance.Text)

	var response *Response
	var err error
	switch {
	case working.CurrentStage != domain.StageHandoff && e.gate.ShouldEscalate(intent):
		response, err = e.escalate(ctx, working, utterance, intent, updates)
	case working.CurrentStage != domain.StageHandoff && e.kb != nil:
		response = e.fastPath(working, utterance, updates)
	}
	if err != nil {
		return nil, err
	}
	if response == nil {
		response, err = e.runFunnel(ctx, working, utterance, intent, updates)
		if err != nil {
			return nil, err
		}
	}

	working.RecordMessage("assistant", response.Text, e.historyWindow)
	if working.CurrentStage == domain.StageDone {
		e.emit(ctx, events.EventResolutionCompleted, utterance.UserID,
			events.ResolutionCompletedPayload{Status: "completed"})
	}

	if err := e.commitContext(ctx, working); err != nil {
		return nil, err
	}
	if err := e.turns.RecordOutcome(ctx, utterance, response.Text); err != nil {
		e.logger.Warn("record turn outcome failed", zap.Error(err))
	}

	response.Stage = working.CurrentStage
	response.Intent = intent
	return response, nil
}

// Reset wipes the user's conversation context.
func (e *Engine) Reset(ctx context.Context, userID string) error {
	if err := e.contexts.Reset(ctx, userID); err != nil {
		return err
	}
	e.clearDirty(userID)
	e.emit(ctx, events.EventContextReset, userID, nil)
	return nil
}

// OnTicketResolved releases a handoff once the operator resolves the ticket
// that caused it. The next message then re-enters the funnel.
func (e *Engine) OnTicketResolved(ctx context.Context, userID, ticketID string) error {
	if err := e.locks.acquire(ctx, userID); err != nil {
		return err
	}
	defer e.locks.release(userID)

	conversation := e.dirtyContext(userID)
	if conversation == nil {
		loaded, err := e.contexts.Load(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrContextNotFound) {
				return nil
			}
			return err
		}
		conversation = loaded
	}
	if conversation.CurrentStage != domain.StageHandoff || conversation.OpenTicketID != ticketID {
		return nil
	}
	working := conversation.Clone()
	working.OpenTicketID = ""
	working.MoveTo(domain.StageDone)
	working.UpdatedAt = e.now()
	e.emit(ctx, events.EventResolutionCompleted, userID,
		events.ResolutionCompletedPayload{Status: "resolved_by_operator"})
	return e.commitContext(ctx, working)
}

// loadWorkingCopy never fails the turn: a context the store cannot produce
// is replaced by an in-memory one and the turn proceeds degraded.
func (e *Engine) loadWorkingCopy(ctx context.Context, userID string) *domain.ConversationContext {
	if dirty := e.dirtyContext(userID); dirty != nil {
		return dirty.Clone()
	}
	conversation, err := e.contexts.Load(ctx, userID)
	if err == nil {
		return conversation.Clone()
	}
	if errors.Is(err, repository.ErrContextNotFound) {
		fresh := domain.NewConversationContext(userID, e.now())
		e.emit(ctx, events.EventConversationStarted, userID, nil)
		return fresh
	}
	e.logger.Error("context load failed, degrading to in-memory context",
		zap.String("user_id", userID), zap.Error(err))
	return domain.NewConversationContext(userID, e.now())
}

// commitContext persists the working copy. A version conflict is a broken
// single-writer invariant and fails the turn; any other store failure keeps
// the copy in memory as dirty and retries persistence on the user's next
// turn, so the decision outcome is never dropped.
func (e *Engine) commitContext(ctx context.Context, working *domain.ConversationContext) error {
	if err := e.contexts.Save(ctx, working); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			e.logger.Error("context version conflict on commit",
				zap.String("user_id", working.UserID),
				zap.Int64("version", working.Version))
			return err
		}
		e.logger.Warn("context save failed, keeping dirty copy for retry",
			zap.String("user_id", working.UserID), zap.Error(err))
		e.markDirty(working)
		return nil
	}
	e.clearDirty(working.UserID)
	return nil
}

func (e *Engine) dirtyContext(userID string) *domain.ConversationContext {
	e.dirtyMu.Lock()
	defer e.dirtyMu.Unlock()
	return e.dirty[userID]
}

func (e *Engine) markDirty(conversation *domain.ConversationContext) {
	e.dirtyMu.Lock()
	defer e.dirtyMu.Unlock()
	e.dirty[conversation.UserID] = conversation.Clone()
}

func (e *Engine) clearDirty(userID string) {
	e.dirtyMu.Lock()
	defer e.dirtyMu.Unlock()
	delete(e.dirty, userID)
}

// escalate opens a ticket and hands the conversation off. Ticket creation
// failures do not cancel the handoff: the manager queues the ticket for
// reconciliation and the user still reaches an operator.
func (e *Engine) escalate(ctx context.Context, working *domain.ConversationContext, utterance domain.Utterance, intent domain.Intent, updates []domain.SlotUpdate) (*Response, error) {
	for _, update := range updates {
		domain.MergeSlot(working.Slots, update, working.Turn)
	}

	reason := nlu.HandoffReason(intent)
	e.emit(ctx, events.EventEscalationTriggered, utterance.UserID, events.EscalationTriggeredPayload{
		Intent: intent.Name,
		Reason: reason,
	})

	ticketType := e.gate.TicketTypeFor(intent)
	summary := reason + ": " + truncate(utterance.Text, 120)
	ticket, err := e.tickets.CreateTicket(ctx, utterance.UserID, ticketType, summary, handoff.BuildSnapshot(working))
	if err != nil {
		e.logger.Error("escalation ticket creation failed",
			zap.String("user_id", utterance.UserID),
			zap.String("type", string(ticketType)),
			zap.Error(err))
	}

	oldStage := working.CurrentStage
	working.MoveTo(domain.StageHandoff)
	if ticket != nil {
		working.OpenTicketID = ticket.ID
	}
	e.emit(ctx, events.EventStageChanged, utterance.UserID, events.StageChangedPayload{
		OldStage: oldStage,
		NewStage: domain.StageHandoff,
	})

	response := &Response{Text: e.gate.EscalationMessage(intent), Escalated: true}
	if ticket != nil {
		response.TicketID = ticket.ID
	}
	return response, nil
}

// fastPath consults the knowledge base for every non-escalated turn; a
// relevant enough FAQ answers directly, leaving the funnel untouched.
func (e *Engine) fastPath(working *domain.ConversationContext, utterance domain.Utterance, updates []domain.SlotUpdate) *Response {
	answer, score := e.kb.Search(utterance.Text)
	if score < e.fastPathThreshold {
		return nil
	}
	for _, update := range updates {
		domain.MergeSlot(working.Slots, update, working.Turn)
	}
	e.logger.Debug("knowledge fast path hit",
		zap.String("user_id", utterance.UserID),
		zap.Float64("score", score))
	return &Response{Text: answer}
}

func (e *Engine) runFunnel(ctx context.Context, working *domain.ConversationContext, utterance domain.Utterance, intent domain.Intent, updates []domain.SlotUpdate) (*Response, error) {
	oldStage := working.CurrentStage
	turn := &funnel.TurnState{Conversation: working, Utterance: utterance, Intent: intent}
	result, err := e.router.Route(ctx, turn, updates)
	if err != nil {
		return nil, err
	}

	response := &Response{Text: e.render(ctx, utterance.UserID, result.Directive)}

	if result.Ticket != nil {
		ticket, terr := e.tickets.CreateTicket(ctx, utterance.UserID, result.Ticket.Type,
			result.Ticket.Summary, handoff.BuildSnapshot(working))
		if terr != nil {
			e.logger.Error("funnel ticket creation failed",
				zap.String("user_id", utterance.UserID),
				zap.String("type", string(result.Ticket.Type)),
				zap.Error(terr))
		}
		if ticket != nil {
			response.TicketID = ticket.ID
			if working.CurrentStage == domain.StageHandoff {
				working.OpenTicketID = ticket.ID
			}
		}
	}

	if working.CurrentStage != oldStage {
		e.emit(ctx, events.EventStageChanged, utterance.UserID, events.StageChangedPayload{
			OldStage: oldStage,
			NewStage: working.CurrentStage,
		})
	}
	return response, nil
}

// render resolves a directive into final text. Generation runs under its own
// timeout; any failure falls back to the directive's fixed text.
func (e *Engine) render(ctx context.Context, userID string, directive funnel.Directive) string {
	if directive.Kind != funnel.DirectiveGenerate || directive.Prompt == nil {
		return directive.Text
	}

	genCtx, cancel := context.WithTimeout(ctx, e.generateTimeout)
	defer cancel()
	text, err := e.generator.Generate(genCtx, *directive.Prompt)
	if err != nil {
		e.logger.Warn("generation failed, using fallback",
			zap.String("user_id", userID),
			zap.String("stage", string(directive.Prompt.Stage)),
			zap.Error(err))
		e.emit(ctx, events.EventGenerationFailed, userID, events.GenerationFailedPayload{
			Stage:  directive.Prompt.Stage,
			Reason: err.Error(),
		})
		if directive.Text != "" {
			return directive.Text
		}
		return fallbackAnswer
	}
	return text
}

func (e *Engine) emit(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	if e.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Payload:   payload,
		Timestamp: e.now(),
	}
	if err := e.dispatcher.Publish(ctx, event); err != nil {
		e.logger.Warn("event publish failed",
			zap.String("type", string(eventType)), zap.Error(err))
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
