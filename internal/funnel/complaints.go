package funnel

import (
	"context"
	"fmt"

	"github.com/spec-kit/dialog-engine/internal/domain"
)

// ComplaintsHandler collects the details of a quality or service complaint
// and hands the conversation to an operator with a ticket attached.
type ComplaintsHandler struct{}

// NewComplaintsHandler constructs the handler.
func NewComplaintsHandler() *ComplaintsHandler {
	return &ComplaintsHandler{}
}

func (h *ComplaintsHandler) Stage() domain.Stage { return domain.StageComplaints }

// RequiredSlots: a complaint needs the order it concerns and a way to reach
// the user once an operator picks it up.
func (h *ComplaintsHandler) RequiredSlots() []string {
	return []string{domain.SlotOrderID, domain.SlotContact}
}

func (h *ComplaintsHandler) Handle(ctx context.Context, turn *TurnState) (StageResult, error) {
	conversation := turn.Conversation
	ticketType := domain.TicketTypeComplaint
	if turn.Intent.Name == "refund_request" {
		ticketType = domain.TicketTypeRefund
	}

	return StageResult{
		Stage:     domain.StageComplaints,
		NextStage: domain.StageHandoff,
		Directive: Directive{
			Kind: DirectiveCanned,
			Text: "Зафиксировал обращение. Оператор разберётся и свяжется с вами. Приносим извинения за неудобства.",
		},
		Ticket: &TicketRequest{
			Type: ticketType,
			Summary: fmt.Sprintf(
				"Жалоба по заказу №%s: %s",
				conversation.SlotValue(domain.SlotOrderID),
				truncateSummary(turn.Utterance.Text),
			),
		},
	}, nil
}

func truncateSummary(text string) string {
	runes := []rune(text)
	if len(runes) <= 120 {
		return text
	}
	return string(runes[:120]) + "…"
}
