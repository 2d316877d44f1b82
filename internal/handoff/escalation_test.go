package handoff

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/dialog-engine/internal/domain"
)

func TestShouldEscalate(t *testing.T) {
	gate := NewGate()

	tests := []struct {
		name   string
		intent domain.Intent
		want   bool
	}{
		{"security always escalates", domain.Intent{Name: "abuse", Group: domain.GroupSecurity}, true},
		{"privacy always escalates", domain.Intent{Name: "delete_data", Group: domain.GroupPrivacy}, true},
		{"complaints always escalate", domain.Intent{Name: "refund_request", Group: domain.GroupComplaints}, true},
		{"explicit handoff escalates from navigation", domain.Intent{Name: "human_handoff", Group: domain.GroupNavigation}, true},
		{"legal escalates by name", domain.Intent{Name: "legal", Group: domain.GroupSupport}, true},
		{"buy does not escalate", domain.Intent{Name: "buy", Group: domain.GroupTransactions}, false},
		{"pricing does not escalate", domain.Intent{Name: "pricing_request", Group: domain.GroupPresales}, false},
		{"greet does not escalate", domain.Intent{Name: "greet", Group: domain.GroupNavigation}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gate.ShouldEscalate(tt.intent))
		})
	}
}

func TestTicketTypeFor(t *testing.T) {
	gate := NewGate()

	assert.Equal(t, domain.TicketTypePrivacy,
		gate.TicketTypeFor(domain.Intent{Name: "delete_data", Group: domain.GroupPrivacy}))
	assert.Equal(t, domain.TicketTypeLegal,
		gate.TicketTypeFor(domain.Intent{Name: "legal", Group: domain.GroupSupport}))
	assert.Equal(t, domain.TicketTypeRefund,
		gate.TicketTypeFor(domain.Intent{Name: "refund_request", Group: domain.GroupComplaints}))
	assert.Equal(t, domain.TicketTypeComplaint,
		gate.TicketTypeFor(domain.Intent{Name: "aggression", Group: domain.GroupSecurity}))
}

func TestEscalationMessage(t *testing.T) {
	gate := NewGate()

	assert.NotEmpty(t, gate.EscalationMessage(domain.Intent{Name: "refund_request"}))
	assert.Equal(t, "Передаю ваш запрос специалисту для решения.",
		gate.EscalationMessage(domain.Intent{Name: "fraud_signals"}))
}
