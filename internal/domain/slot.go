package domain

// Well-known slot names recognized by the extractor and stage handlers.
const (
	SlotGoal          = "goal"
	SlotRequestedItem = "requested_item"
	SlotBudgetBand    = "budget_band"
	SlotDeadline      = "deadline"
	SlotOrderID       = "order_id"
	SlotContact       = "contact"
)

// Slot is a structured field collected during a conversation. Keyed by name,
// unique per ConversationContext.
type Slot struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	SourceTurn int     `json:"source_turn"`
	Confirmed  bool    `json:"confirmed"`
}

// SlotUpdate is a candidate value produced by extraction for a single turn.
// Correction marks an explicit user correction allowed to overwrite a
// confirmed slot.
type SlotUpdate struct {
	Name       string
	Value      string
	Confidence float64
	Correction bool
}

// Slot confidence at or above this level is treated as confirmed on merge.
const ConfirmConfidence = 0.9

// MergeSlot applies one update to a slot map following the merge policy:
// an update overwrites an unconfirmed slot; a confirmed slot is only
// overwritten by an explicit correction. Returns whether the map changed.
func MergeSlot(slots map[string]Slot, update SlotUpdate, turn int) bool {
	existing, ok := slots[update.Name]
	if ok && existing.Confirmed && !update.Correction {
		return false
	}
	slots[update.Name] = Slot{
		Name:       update.Name,
		Value:      update.Value,
		Confidence: update.Confidence,
		SourceTurn: turn,
		Confirmed:  update.Correction || update.Confidence >= ConfirmConfidence,
	}
	return true
}
