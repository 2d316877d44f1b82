package funnel

import (
	"context"
	"fmt"

	"github.com/spec-kit/dialog-engine/internal/domain"
)

// handoffWaitText is the holding answer while an operator owns the dialog.
const handoffWaitText = "Ваше обращение у оператора. Он свяжется с вами в ближайшее время."

// SlotValidator checks whether a stored slot value is usable for its slot.
// A rejected value comes back with a user-facing message explaining what to
// send instead.
type SlotValidator interface {
	Validate(name, value string) (bool, string)
}

// Router owns the handler registry and drives one funnel turn: merge slot
// updates, pick the stage the intent points at, enforce transition legality
// and required slots, run the handler and apply its outcome.
type Router struct {
	validator SlotValidator
	handlers  map[domain.Stage]Handler
}

// NewRouter registers the given handlers. A nil validator accepts every
// slot value. Later registrations for the same stage overwrite earlier ones.
func NewRouter(validator SlotValidator, handlers ...Handler) *Router {
	registry := make(map[domain.Stage]Handler, len(handlers))
	for _, handler := range handlers {
		registry[handler.Stage()] = handler
	}
	return &Router{validator: validator, handlers: registry}
}

// Route executes one funnel turn against the working copy in turn.Conversation.
// The caller commits or discards the copy; Route never persists anything.
func (r *Router) Route(ctx context.Context, turn *TurnState, updates []domain.SlotUpdate) (StageResult, error) {
	conversation := turn.Conversation

	for _, update := range updates {
		domain.MergeSlot(conversation.Slots, update, conversation.Turn)
	}

	if conversation.CurrentStage == domain.StageHandoff {
		return stay(domain.StageHandoff, Directive{Kind: DirectiveCanned, Text: handoffWaitText}), nil
	}
	if conversation.CurrentStage == domain.StageDone {
		conversation.MoveTo(domain.StageRetention)
	}

	if target := r.targetStage(turn); target != conversation.CurrentStage &&
		domain.CanTransition(conversation.CurrentStage, target) {
		conversation.MoveTo(target)
	}

	handler, ok := r.handlers[conversation.CurrentStage]
	if !ok {
		return StageResult{}, fmt.Errorf("no handler for stage %q", conversation.CurrentStage)
	}

	if missing := r.missingSlots(handler, conversation); len(missing) > 0 {
		return stay(conversation.CurrentStage, repromptFor(missing)), nil
	}

	result, err := handler.Handle(ctx, turn)
	if err != nil {
		return StageResult{}, fmt.Errorf("stage %q: %w", conversation.CurrentStage, err)
	}

	if result.NextStage != result.Stage {
		if !domain.CanTransition(result.Stage, result.NextStage) {
			return StageResult{}, fmt.Errorf("illegal transition %q -> %q", result.Stage, result.NextStage)
		}
		conversation.MoveTo(result.NextStage)
	}
	return result, nil
}

// missingSlots returns the required slots the conversation holds no usable
// value for. A filled slot that fails validation is dropped and reprompted
// with the validator's message.
func (r *Router) missingSlots(handler Handler, conversation *domain.ConversationContext) []missingSlot {
	var missing []missingSlot
	for _, name := range handler.RequiredSlots() {
		value := conversation.SlotValue(name)
		if value == "" {
			missing = append(missing, missingSlot{name: name})
			continue
		}
		if r.validator == nil {
			continue
		}
		if ok, message := r.validator.Validate(name, value); !ok {
			delete(conversation.Slots, name)
			missing = append(missing, missingSlot{name: name, message: message})
		}
	}
	return missing
}

// targetStage maps the classified intent onto the stage that should serve it.
// Service groups preempt the sales progression; sales groups fast-forward it
// only as far as the transition graph allows.
func (r *Router) targetStage(turn *TurnState) domain.Stage {
	current := turn.Conversation.CurrentStage
	switch turn.Intent.Group {
	case domain.GroupComplaints:
		return domain.StageComplaints
	case domain.GroupSupport:
		return domain.StageSupport
	case domain.GroupTransactions:
		if turn.Conversation.HasSlot(domain.SlotGoal) || turn.Conversation.HasSlot(domain.SlotRequestedItem) {
			return domain.StageClosing
		}
		return domain.StageQualification
	case domain.GroupPresales:
		if turn.Conversation.HasSlot(domain.SlotGoal) {
			return domain.StageOffer
		}
		return domain.StageQualification
	}
	return current
}
