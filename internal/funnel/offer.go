package funnel

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/dialog-engine/internal/domain"
	"github.com/spec-kit/dialog-engine/internal/generator"
	"github.com/spec-kit/dialog-engine/internal/knowledge"
)

var orderAgreementKeywords = []string{
	"заказ", "оформ", "согласен", "согласна", "подходит", "беру", "давайте", "да",
}

// OfferHandler turns a completed qualification into a concrete next step:
// candidate options from the service catalog, awaiting the user's agreement.
type OfferHandler struct {
	kb *knowledge.Base
}

// NewOfferHandler constructs the handler.
func NewOfferHandler(kb *knowledge.Base) *OfferHandler {
	return &OfferHandler{kb: kb}
}

func (h *OfferHandler) Stage() domain.Stage { return domain.StageOffer }

// RequiredSlots: the offer needs to know what the user is after.
func (h *OfferHandler) RequiredSlots() []string {
	return []string{domain.SlotRequestedItem}
}

func (h *OfferHandler) Handle(ctx context.Context, turn *TurnState) (StageResult, error) {
	if userAgrees(turn.Utterance.Text) {
		return StageResult{
			Stage:     domain.StageOffer,
			NextStage: domain.StageClosing,
			Directive: Directive{Kind: DirectiveCanned, Text: "Отлично! Оформляем заказ."},
		}, nil
	}

	return stay(domain.StageOffer, Directive{
		Kind: DirectiveGenerate,
		Text: h.catalogOffer(turn.Conversation),
		Prompt: &generator.PromptSpec{
			Stage:       domain.StageOffer,
			Instruction: "Предложи клиенту 2-3 подходящих варианта из каталога и спроси, какой оформить.",
			UserMessage: turn.Utterance.Text,
			Slots:       slotValues(turn.Conversation),
		},
	}), nil
}

// catalogOffer builds the fixed-text fallback offer from the catalog.
func (h *OfferHandler) catalogOffer(conversation *domain.ConversationContext) string {
	if h.kb == nil || len(h.kb.Services) == 0 {
		return "Свяжитесь с менеджером для подбора решения."
	}
	var b strings.Builder
	b.WriteString("Вот что могу предложить:\n")
	for i, service := range h.kb.Services {
		if i == 3 {
			break
		}
		b.WriteString(fmt.Sprintf("• %s — %s", service.Name, service.Summary))
		if service.PriceFrom != "" {
			b.WriteString(" (от " + service.PriceFrom + ")")
		}
		b.WriteString("\n")
	}
	b.WriteString("\nКакой вариант оформить?")
	return b.String()
}

func userAgrees(text string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range orderAgreementKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func slotValues(conversation *domain.ConversationContext) map[string]string {
	values := make(map[string]string, len(conversation.Slots))
	for name, slot := range conversation.Slots {
		values[name] = slot.Value
	}
	return values
}
