package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Stage
		to      Stage
		allowed bool
	}{
		{"acquisition to qualification", StageAcquisition, StageQualification, true},
		{"acquisition cannot skip to offer", StageAcquisition, StageOffer, false},
		{"qualification to offer", StageQualification, StageOffer, true},
		{"offer to closing", StageOffer, StageClosing, true},
		{"closing to done", StageClosing, StageDone, true},
		{"support to done", StageSupport, StageDone, true},
		{"support to handoff", StageSupport, StageHandoff, true},
		{"complaints to handoff", StageComplaints, StageHandoff, true},
		{"retention to qualification", StageRetention, StageQualification, true},
		{"retention to done", StageRetention, StageDone, true},
		{"done re-engages acquisition", StageDone, StageAcquisition, true},
		{"done re-engages retention", StageDone, StageRetention, true},
		{"same stage is legal", StageOffer, StageOffer, true},
		{"any stage may hand off", StageQualification, StageHandoff, true},
		{"support entry from qualification", StageQualification, StageSupport, true},
		{"complaints entry from offer", StageOffer, StageComplaints, true},
		{"no support entry from done", StageDone, StageSupport, false},
		{"handoff does not resume directly", StageHandoff, StageAcquisition, false},
		{"closing cannot rewind", StageClosing, StageQualification, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StageDone.IsTerminal())
	assert.True(t, StageHandoff.IsTerminal())
	assert.False(t, StageAcquisition.IsTerminal())
	assert.False(t, StageComplaints.IsTerminal())
}

func TestConversationContextMoveTo(t *testing.T) {
	conversation := NewConversationContext("u1", time.Now())
	require.Equal(t, StageAcquisition, conversation.CurrentStage)

	conversation.MoveTo(StageQualification)
	conversation.MoveTo(StageQualification)
	assert.Equal(t, StageQualification, conversation.CurrentStage)
	assert.Equal(t, 1, conversation.StageEntries[StageQualification])
}

func TestConversationContextCloneIsIndependent(t *testing.T) {
	conversation := NewConversationContext("u1", time.Now())
	conversation.Slots[SlotGoal] = Slot{Name: SlotGoal, Value: "разработка"}
	conversation.RecordMessage("user", "привет", 5)

	working := conversation.Clone()
	working.Slots[SlotGoal] = Slot{Name: SlotGoal, Value: "поддержка"}
	working.MoveTo(StageQualification)
	working.RecordMessage("assistant", "ответ", 5)

	assert.Equal(t, "разработка", conversation.Slots[SlotGoal].Value)
	assert.Equal(t, StageAcquisition, conversation.CurrentStage)
	assert.Len(t, conversation.History, 1)
}

func TestRecordIntentWindow(t *testing.T) {
	conversation := NewConversationContext("u1", time.Now())
	for i := 0; i < 8; i++ {
		conversation.RecordIntent(Intent{Name: "greet"}, 5)
	}
	assert.Len(t, conversation.LastIntents, 5)
}
