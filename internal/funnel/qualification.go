package funnel

import (
	"context"
	"fmt"

	"github.com/spec-kit/dialog-engine/internal/domain"
)

// QualificationHandler collects the minimum slots for a correct offer:
// what, by when, for roughly how much.
type QualificationHandler struct{}

// NewQualificationHandler constructs the handler.
func NewQualificationHandler() *QualificationHandler {
	return &QualificationHandler{}
}

func (h *QualificationHandler) Stage() domain.Stage { return domain.StageQualification }

func (h *QualificationHandler) RequiredSlots() []string {
	return []string{domain.SlotGoal, domain.SlotBudgetBand, domain.SlotDeadline}
}

// Handle is only invoked once required slots are satisfied (the router
// reprompts otherwise), so qualification is complete: summarize and advance.
func (h *QualificationHandler) Handle(ctx context.Context, turn *TurnState) (StageResult, error) {
	conversation := turn.Conversation
	summary := fmt.Sprintf(
		"Понял:\n• Задача: %s\n• Бюджет: %s\n• Срок: %s\n\nСейчас подберу варианты...",
		orUnknown(conversation.SlotValue(domain.SlotGoal)),
		orUnknown(conversation.SlotValue(domain.SlotBudgetBand)),
		orUnknown(conversation.SlotValue(domain.SlotDeadline)),
	)
	return StageResult{
		Stage:     domain.StageQualification,
		NextStage: domain.StageOffer,
		Directive: Directive{Kind: DirectiveCanned, Text: summary},
	}, nil
}

func orUnknown(value string) string {
	if value == "" {
		return "не указано"
	}
	return value
}
