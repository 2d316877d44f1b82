// Package funnel implements the staged engagement state machine driving
// non-escalated conversations. One handler per stage, invoked through a
// uniform contract; the transition graph is declared centrally in the
// domain package so its legality is verifiable in one place.
package funnel

import (
	"context"
	"strings"

	"github.com/spec-kit/dialog-engine/internal/domain"
	"github.com/spec-kit/dialog-engine/internal/generator"
)

// DirectiveKind discriminates how a response should be produced.
type DirectiveKind string

const (
	// DirectiveCanned carries final fixed text.
	DirectiveCanned DirectiveKind = "canned"
	// DirectiveFAQ carries a knowledge-base answer.
	DirectiveFAQ DirectiveKind = "faq"
	// DirectiveReprompt asks the user for missing slots.
	DirectiveReprompt DirectiveKind = "reprompt"
	// DirectiveGenerate delegates rendering to the text backend; Prompt
	// holds the stage-specific parameters, Text the fallback answer used
	// when generation fails.
	DirectiveGenerate DirectiveKind = "generate"
)

// Directive is the response instruction a stage produces. The funnel never
// renders generative text itself.
type Directive struct {
	Kind   DirectiveKind
	Text   string
	Prompt *generator.PromptSpec
}

// TurnState is the working state a handler operates on. Conversation is the
// turn's working copy; mutations commit only when the turn completes.
type TurnState struct {
	Conversation *domain.ConversationContext
	Utterance    domain.Utterance
	Intent       domain.Intent
}

// TicketRequest asks the engine to open a ticket as part of stage logic,
// e.g. a sales lead out of Closing.
type TicketRequest struct {
	Type    domain.TicketType
	Summary string
}

// StageResult is the uniform outcome of one handler invocation.
type StageResult struct {
	Stage     domain.Stage
	NextStage domain.Stage
	Directive Directive
	Ticket    *TicketRequest
}

// Handler is the per-stage contract.
type Handler interface {
	Stage() domain.Stage
	RequiredSlots() []string
	Handle(ctx context.Context, turn *TurnState) (StageResult, error)
}

// slotQuestions are the reprompt texts per missing slot.
var slotQuestions = map[string]string{
	domain.SlotGoal:          "Какая у вас цель? Что именно нужно сделать?",
	domain.SlotRequestedItem: "Что именно вас интересует из наших услуг?",
	domain.SlotDeadline:      "Когда нужно? Есть ли срок?",
	domain.SlotBudgetBand:    "Какой у вас бюджет? Хотя бы примерно.",
	domain.SlotContact:       "Оставьте контакт для связи (телефон или email).",
	domain.SlotOrderID:       "Напишите номер заказа.",
}

// missingSlot is a required slot the conversation holds no usable value
// for. A non-empty message carries a validation rejection to the user in
// place of the default question.
type missingSlot struct {
	name    string
	message string
}

// repromptFor builds the question text for missing slots, combining at most
// two questions per turn.
func repromptFor(missing []missingSlot) Directive {
	questions := make([]string, 0, 2)
	for _, slot := range missing {
		switch question, ok := slotQuestions[slot.name]; {
		case slot.message != "":
			questions = append(questions, slot.message)
		case ok:
			questions = append(questions, question)
		default:
			questions = append(questions, "Уточните: "+slot.name)
		}
		if len(questions) == 2 {
			break
		}
	}
	text := questions[0]
	if len(questions) > 1 {
		text = questions[0] + " И " + strings.ToLower(string([]rune(questions[1])[:1])) + string([]rune(questions[1])[1:])
	}
	return Directive{Kind: DirectiveReprompt, Text: text}
}

// stay produces a result that keeps the conversation in its current stage.
func stay(stage domain.Stage, directive Directive) StageResult {
	return StageResult{Stage: stage, NextStage: stage, Directive: directive}
}
