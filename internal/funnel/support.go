package funnel

import (
	"context"
	"fmt"

	"github.com/spec-kit/dialog-engine/internal/domain"
	"github.com/spec-kit/dialog-engine/internal/generator"
)

var orderBoundIntents = map[string]bool{
	"status":       true,
	"change_order": true,
	"cancel_order": true,
}

// SupportHandler serves post-sale questions: order status, order changes and
// how-to answers. It is a service stage, entered on intent rather than
// through the sales progression.
type SupportHandler struct{}

// NewSupportHandler constructs the handler.
func NewSupportHandler() *SupportHandler {
	return &SupportHandler{}
}

func (h *SupportHandler) Stage() domain.Stage { return domain.StageSupport }

// RequiredSlots is empty: only order-bound intents need a slot, and the
// handler reprompts for it itself.
func (h *SupportHandler) RequiredSlots() []string { return nil }

func (h *SupportHandler) Handle(ctx context.Context, turn *TurnState) (StageResult, error) {
	conversation := turn.Conversation

	if orderBoundIntents[turn.Intent.Name] {
		orderID := conversation.SlotValue(domain.SlotOrderID)
		if orderID == "" {
			return stay(domain.StageSupport, repromptFor([]missingSlot{{name: domain.SlotOrderID}})), nil
		}
		return StageResult{
			Stage:     domain.StageSupport,
			NextStage: domain.StageDone,
			Directive: Directive{
				Kind: DirectiveCanned,
				Text: fmt.Sprintf(
					"Принял, заказ №%s. Передаю запрос в обработку, ответим в этом чате. Чем ещё помочь?",
					orderID,
				),
			},
		}, nil
	}

	return StageResult{
		Stage:     domain.StageSupport,
		NextStage: domain.StageDone,
		Directive: Directive{
			Kind: DirectiveGenerate,
			Text: "Передал ваш вопрос специалисту поддержки, ответим в этом чате.",
			Prompt: &generator.PromptSpec{
				Stage:       domain.StageSupport,
				Instruction: "Ответь на вопрос клиента по услугам и порядку работы. Если не уверен в ответе, предложи связаться с поддержкой.",
				UserMessage: turn.Utterance.Text,
				Slots:       slotValues(conversation),
				History:     conversation.History,
			},
		},
	}, nil
}
