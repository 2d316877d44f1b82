package funnel

import (
	"context"
	"fmt"

	"github.com/spec-kit/dialog-engine/internal/domain"
)

// ClosingHandler finalizes an order: once a contact is on record it opens a
// sales lead ticket and completes the conversation.
type ClosingHandler struct{}

// NewClosingHandler constructs the handler.
func NewClosingHandler() *ClosingHandler {
	return &ClosingHandler{}
}

func (h *ClosingHandler) Stage() domain.Stage { return domain.StageClosing }

// RequiredSlots: closing cannot complete without a way to reach the user.
func (h *ClosingHandler) RequiredSlots() []string {
	return []string{domain.SlotContact}
}

func (h *ClosingHandler) Handle(ctx context.Context, turn *TurnState) (StageResult, error) {
	conversation := turn.Conversation
	summary := fmt.Sprintf("Заявка: %s", orUnknown(conversation.SlotValue(domain.SlotRequestedItem)))
	if goal := conversation.SlotValue(domain.SlotGoal); goal != "" {
		summary += ", цель: " + goal
	}

	return StageResult{
		Stage:     domain.StageClosing,
		NextStage: domain.StageDone,
		Directive: Directive{
			Kind: DirectiveCanned,
			Text: fmt.Sprintf(
				"Спасибо! Заявка принята. Менеджер свяжется с вами по контакту %s в ближайшее время.",
				conversation.SlotValue(domain.SlotContact),
			),
		},
		Ticket: &TicketRequest{
			Type:    domain.TicketTypeSalesLead,
			Summary: summary,
		},
	}, nil
}
