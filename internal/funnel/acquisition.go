package funnel

import (
	"context"
	"strings"

	"github.com/spec-kit/dialog-engine/internal/domain"
	"github.com/spec-kit/dialog-engine/internal/generator"
	"github.com/spec-kit/dialog-engine/internal/knowledge"
)

// AcquisitionHandler is the first-contact stage: greet, surface directions,
// and move on as soon as the user describes a task.
type AcquisitionHandler struct {
	kb *knowledge.Base
}

// NewAcquisitionHandler constructs the handler.
func NewAcquisitionHandler(kb *knowledge.Base) *AcquisitionHandler {
	return &AcquisitionHandler{kb: kb}
}

func (h *AcquisitionHandler) Stage() domain.Stage { return domain.StageAcquisition }

// RequiredSlots is empty: first contact collects nothing mandatory.
func (h *AcquisitionHandler) RequiredSlots() []string { return nil }

func (h *AcquisitionHandler) Handle(ctx context.Context, turn *TurnState) (StageResult, error) {
	conversation := turn.Conversation

	switch turn.Intent.Name {
	case "greet", "menu", "help":
		return stay(domain.StageAcquisition, Directive{
			Kind: DirectiveCanned,
			Text: h.welcomeText(),
		}), nil
	}

	// A described task or an expressed interest is the exit criterion.
	if conversation.HasSlot(domain.SlotGoal) || conversation.HasSlot(domain.SlotRequestedItem) ||
		turn.Intent.Group == domain.GroupPresales || turn.Intent.Group == domain.GroupTransactions {
		return StageResult{
			Stage:     domain.StageAcquisition,
			NextStage: domain.StageQualification,
			Directive: Directive{
				Kind: DirectiveGenerate,
				Text: "Расскажите подробнее, что вам нужно — подберу решение.",
				Prompt: &generator.PromptSpec{
					Stage:       domain.StageAcquisition,
					Instruction: "Клиент проявил интерес. Поблагодари и задай один уточняющий вопрос о задаче.",
					UserMessage: turn.Utterance.Text,
				},
			},
		}, nil
	}

	// User is browsing without a direction yet.
	return stay(domain.StageAcquisition, Directive{
		Kind: DirectiveGenerate,
		Text: h.welcomeText(),
		Prompt: &generator.PromptSpec{
			Stage:       domain.StageAcquisition,
			Instruction: "Клиент пока не выбрал направление. Коротко предложи варианты: узнать об услугах, заказать, получить поддержку.",
			UserMessage: turn.Utterance.Text,
		},
	}), nil
}

func (h *AcquisitionHandler) welcomeText() string {
	var b strings.Builder
	b.WriteString("Здравствуйте! Чем могу помочь?\n")
	b.WriteString("• Узнать об услугах и ценах\n")
	b.WriteString("• Оформить заказ\n")
	b.WriteString("• Получить поддержку по заказу")
	if h.kb != nil && h.kb.Company.Name != "" {
		b.WriteString("\n\n")
		b.WriteString(h.kb.Company.Name)
	}
	return b.String()
}
