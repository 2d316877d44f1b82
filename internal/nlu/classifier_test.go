package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dialog-engine/internal/domain"
)

func TestClassifyPriorityCascade(t *testing.T) {
	classifier := NewClassifier()

	tests := []struct {
		name       string
		text       string
		wantIntent string
		wantGroup  domain.PriorityGroup
	}{
		{"greeting", "привет", "greet", domain.GroupNavigation},
		{"explicit handoff", "позовите оператора", "human_handoff", domain.GroupNavigation},
		{"pricing question", "сколько стоит у вас", "pricing_request", domain.GroupPresales},
		{"refund beats support", "хочу вернуть деньги", "refund_request", domain.GroupComplaints},
		{"cancel routes to complaints", "хочу отменить заказ", "refund_request", domain.GroupComplaints},
		{"fraud signal wins over everything", "вы мошенники, верните деньги", "abuse", domain.GroupSecurity},
		{"privacy request", "удалите мои данные", "delete_data", domain.GroupPrivacy},
		{"buy intent", "хочу заказать", "buy", domain.GroupTransactions},
		{"order status", "какой статус заказа", "status", domain.GroupSupport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := classifier.Classify(tt.text, nil)
			assert.Equal(t, tt.wantIntent, intent.Name)
			assert.Equal(t, tt.wantGroup, intent.Group)
			assert.Greater(t, intent.Confidence, 0.0)
		})
	}
}

func TestClassifyFallback(t *testing.T) {
	classifier := NewClassifier()

	intent := classifier.Classify("фыва олдж", nil)
	assert.Equal(t, domain.FallbackIntentName, intent.Name)
	assert.Equal(t, domain.GroupNavigation, intent.Group)
	assert.Zero(t, intent.Confidence)
	assert.True(t, intent.IsFallback())
}

func TestClassifyDeterministic(t *testing.T) {
	classifier := NewClassifier()

	first := classifier.Classify("хочу вернуть деньги за заказ", nil)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, classifier.Classify("хочу вернуть деньги за заказ", nil))
	}
}

func TestScorePatternNegatorZeroes(t *testing.T) {
	pattern := Pattern{
		Intent:   "cancel_order",
		Keywords: []string{"отменить", "не нужен", "отмена заказа"},
		Negators: []string{"возврат", "деньги"},
	}

	score, _ := scorePattern(pattern, "отменить заказ и оформить возврат", nil)
	assert.Zero(t, score)

	score, matched := scorePattern(pattern, "просто отменить", nil)
	assert.Greater(t, score, 0.0)
	assert.Equal(t, "отменить", matched)
}

func TestScorePatternShortUtteranceBonus(t *testing.T) {
	pattern := Pattern{Intent: "greet", Keywords: []string{"привет", "здравствуй"}}

	short, _ := scorePattern(pattern, "привет", nil)
	long, _ := scorePattern(pattern, "привет расскажите пожалуйста подробно про все ваши условия работы", nil)
	assert.Greater(t, short, long)
	assert.InDelta(t, 0.5+0.3, short, 1e-9)
}

func TestScorePatternHistoryBoost(t *testing.T) {
	classifier := NewClassifier()
	history := []domain.Message{
		{Role: "user", Content: "Какие услуги вы предлагаете?"},
		{Role: "assistant", Content: "Мы делаем настройку и сопровождение."},
	}

	boosted := classifier.Classify("хочу заказать", history)
	plain := classifier.Classify("хочу заказать", nil)

	require.Equal(t, "buy", boosted.Name)
	assert.Greater(t, boosted.Confidence, plain.Confidence)
}

func TestScorePatternCappedAtOne(t *testing.T) {
	pattern := Pattern{Intent: "x", Keywords: []string{"привет"}}
	score, _ := scorePattern(pattern, "привет", nil)
	assert.LessOrEqual(t, score, 1.0)
}

func TestHandoffReason(t *testing.T) {
	assert.Equal(t, "Запрос на возврат средств",
		HandoffReason(domain.Intent{Name: "refund_request"}))
	assert.Equal(t, "Требуется участие специалиста",
		HandoffReason(domain.Intent{Name: "unknown_intent"}))
}
