// Package handoff owns routing away from automated handling: the escalation
// policy, SLA-tracked ticket creation, and deadline sweeping.
package handoff

import "github.com/spec-kit/dialog-engine/internal/domain"

// Intents outside the critical groups that still escalate by name.
var escalatingIntents = map[string]struct{}{
	"human_handoff": {},
	"legal":         {},
}

// Gate decides whether an intent bypasses the funnel. Pure lookup keyed by
// priority group and intent name; it runs strictly after classification and
// before any funnel stage logic.
type Gate struct{}

// NewGate builds the escalation gate.
func NewGate() *Gate {
	return &Gate{}
}

// ShouldEscalate reports whether the intent pre-empts the funnel. The three
// critical groups always escalate; a handful of named intents escalate from
// lower groups.
func (g *Gate) ShouldEscalate(intent domain.Intent) bool {
	if intent.Group <= domain.GroupComplaints {
		return true
	}
	_, named := escalatingIntents[intent.Name]
	return named
}

// TicketTypeFor maps an escalating intent to its ticket type.
func (g *Gate) TicketTypeFor(intent domain.Intent) domain.TicketType {
	if intent.Group == domain.GroupPrivacy {
		return domain.TicketTypePrivacy
	}
	switch intent.Name {
	case "legal":
		return domain.TicketTypeLegal
	case "refund_request":
		return domain.TicketTypeRefund
	}
	return domain.TicketTypeComplaint
}

// escalationMessages are the user-facing acknowledgements sent when a
// conversation is handed off, keyed by intent name.
var escalationMessages = map[string]string{
	"privacy_request": "Ваш запрос по персональным данным зарегистрирован. " +
		"Специалист свяжется с вами для верификации и выполнения запроса. " +
		"Ожидаемый срок — до 30 дней.",
	"delete_data": "Ваш запрос по персональным данным зарегистрирован. " +
		"Специалист свяжется с вами для верификации и выполнения запроса.",
	"refund_request": "Ваш запрос на возврат принят. " +
		"Менеджер свяжется с вами в течение 24 часов для уточнения деталей.",
	"complaint_quality": "Ваша жалоба зарегистрирована. " +
		"Мы свяжемся с вами в течение 1 рабочего дня.",
	"complaint_service": "Ваша жалоба зарегистрирована. " +
		"Мы свяжемся с вами в течение 1 рабочего дня.",
	"aggression": "Передаю вас специалисту для решения вопроса.",
	"human_handoff": "Соединяю с менеджером. " +
		"Если сейчас вне рабочего времени — свяжемся утром.",
}

// EscalationMessage returns the canned acknowledgement for an escalating
// intent.
func (g *Gate) EscalationMessage(intent domain.Intent) string {
	if msg, ok := escalationMessages[intent.Name]; ok {
		return msg
	}
	return "Передаю ваш запрос специалисту для решения."
}
