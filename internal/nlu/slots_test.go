package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dialog-engine/internal/domain"
)

func findUpdate(updates []domain.SlotUpdate, name string) (domain.SlotUpdate, bool) {
	for _, update := range updates {
		if update.Name == name {
			return update, true
		}
	}
	return domain.SlotUpdate{}, false
}

func TestExtractOrderID(t *testing.T) {
	extractor := NewExtractor()

	tests := []struct {
		text string
		want string
	}{
		{"хочу вернуть заказ 12345", "12345"},
		{"заказ №777 где", "777"},
		{"номер 4521 проверьте", "4521"},
		{"#99 статус", "99"},
	}
	for _, tt := range tests {
		updates := extractor.Extract(tt.text)
		update, ok := findUpdate(updates, domain.SlotOrderID)
		require.True(t, ok, tt.text)
		assert.Equal(t, tt.want, update.Value, tt.text)
		assert.InDelta(t, 0.9, update.Confidence, 1e-9)
	}
}

func TestExtractContact(t *testing.T) {
	extractor := NewExtractor()

	updates := extractor.Extract("мой телефон +7 900 123-45-67")
	update, ok := findUpdate(updates, domain.SlotContact)
	require.True(t, ok)
	assert.Equal(t, "+7 900 123-45-67", update.Value)

	updates = extractor.Extract("пишите на ivan@example.com")
	update, ok = findUpdate(updates, domain.SlotContact)
	require.True(t, ok)
	assert.Equal(t, "ivan@example.com", update.Value)
}

func TestExtractBudget(t *testing.T) {
	extractor := NewExtractor()

	updates := extractor.Extract("бюджет 50 тысяч")
	update, ok := findUpdate(updates, domain.SlotBudgetBand)
	require.True(t, ok)
	assert.Equal(t, "50000 руб", update.Value)

	updates = extractor.Extract("готов потратить 5000 руб")
	update, ok = findUpdate(updates, domain.SlotBudgetBand)
	require.True(t, ok)
	assert.Equal(t, "5000 руб", update.Value)
}

func TestExtractDeadline(t *testing.T) {
	extractor := NewExtractor()

	updates := extractor.Extract("нужно срочно")
	update, ok := findUpdate(updates, domain.SlotDeadline)
	require.True(t, ok)
	assert.Equal(t, "срочно", update.Value)

	updates = extractor.Extract("сдать через 2 недели")
	update, ok = findUpdate(updates, domain.SlotDeadline)
	require.True(t, ok)
	assert.Equal(t, "через 2 недели", update.Value)
}

func TestExtractGoalAndItem(t *testing.T) {
	extractor := NewExtractor()

	updates := extractor.Extract("хочу разработать сайт")
	goal, ok := findUpdate(updates, domain.SlotGoal)
	require.True(t, ok)
	assert.Equal(t, "разработка", goal.Value)

	item, ok := findUpdate(updates, domain.SlotRequestedItem)
	require.True(t, ok)
	assert.Equal(t, "сайт", item.Value)
}

func TestExtractNothingIsNoOp(t *testing.T) {
	extractor := NewExtractor()
	assert.Empty(t, extractor.Extract("добрый день"))
}

func TestExtractCorrectionFlag(t *testing.T) {
	extractor := NewExtractor()

	updates := extractor.Extract("ошибся, заказ 111")
	update, ok := findUpdate(updates, domain.SlotOrderID)
	require.True(t, ok)
	assert.True(t, update.Correction)

	updates = extractor.Extract("заказ 111")
	update, _ = findUpdate(updates, domain.SlotOrderID)
	assert.False(t, update.Correction)
}

func TestValidate(t *testing.T) {
	extractor := NewExtractor()

	ok, _ := extractor.Validate(domain.SlotOrderID, "12345")
	assert.True(t, ok)
	ok, msg := extractor.Validate(domain.SlotOrderID, "abc")
	assert.False(t, ok)
	assert.NotEmpty(t, msg)

	ok, _ = extractor.Validate(domain.SlotContact, "ivan@example.com")
	assert.True(t, ok)
	ok, _ = extractor.Validate(domain.SlotContact, "просто текст")
	assert.False(t, ok)

	ok, _ = extractor.Validate(domain.SlotBudgetBand, "50000 руб")
	assert.True(t, ok)
	ok, _ = extractor.Validate(domain.SlotBudgetBand, "много")
	assert.False(t, ok)
}
