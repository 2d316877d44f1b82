package nlu

import (
	"regexp"
	"strings"

	"github.com/spec-kit/dialog-engine/internal/domain"
)

// Per-recognizer extraction confidences.
const (
	confidenceOrderID  = 0.9
	confidenceContact  = 0.95
	confidenceBudget   = 0.8
	confidenceDeadline = 0.7
	confidenceGoal     = 0.6
	confidenceItem     = 0.6
)

var (
	orderIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)заказ\s*№?\s*(\d+)`),
		regexp.MustCompile(`(?i)заказа?\s*(\d+)`),
		regexp.MustCompile(`(?i)номер\s*(\d+)`),
		regexp.MustCompile(`#(\d+)`),
	}

	budgetPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*(?:руб|рублей|тысяч|тыс|к)`),
		regexp.MustCompile(`бюджет\s*(\d+)`),
		regexp.MustCompile(`до\s*(\d+)`),
		regexp.MustCompile(`около\s*(\d+)`),
	}
	budgetThousands = regexp.MustCompile(`тысяч|тыс|\d\s*к`)

	deadlinePattern = regexp.MustCompile(
		`через\s+(\d+)\s+(?:день|дня|дней|неделю|недели|недель|месяц|месяца|месяцев)`)
	deadlineLiterals = []string{"срочно", "как можно скорее", "сегодня", "завтра"}

	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+?7\s*\(?\d{3}\)?\s*\d{3}-?\d{2}-?\d{2}`),
		regexp.MustCompile(`8\s*\(?\d{3}\)?\s*\d{3}-?\d{2}-?\d{2}`),
	}
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	digitsOnly = regexp.MustCompile(`^\d+$`)

	correctionMarkers = []string{
		"на самом деле", "ошибся", "ошиблась", "я имел в виду", "имела в виду",
		"неправильно", "исправьте", "не тот", "не та",
	}

	goalBuckets = []struct {
		name     string
		keywords []string
	}{
		{"консультация", []string{"консультация", "посоветовать", "помочь разобраться"}},
		{"разработка", []string{"разработать", "создать", "сделать сайт", "приложение"}},
		{"поддержка", []string{"сопровождение", "обслуживание", "техподдержка"}},
		{"автоматизация", []string{"автоматизировать", "автоматизация", "оптимизировать"}},
	}

	itemKeywords = []string{"сайт", "бот", "приложение", "магазин", "crm", "интеграц", "лендинг"}
)

// Extractor derives structured slot updates from utterance text. Pure
// computation: an extraction that finds nothing is a no-op, never an error.
// The merge policy belongs to the caller, not the extractor.
type Extractor struct{}

// NewExtractor builds a slot extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract attempts every known recognizer against the utterance and returns
// the successful ones. Updates carry the correction flag when the utterance
// contains an explicit correction marker.
func (e *Extractor) Extract(text string) []domain.SlotUpdate {
	lowered := strings.ToLower(text)
	correction := isCorrection(lowered)

	var updates []domain.SlotUpdate
	add := func(name, value string, confidence float64) {
		if value == "" {
			return
		}
		updates = append(updates, domain.SlotUpdate{
			Name:       name,
			Value:      value,
			Confidence: confidence,
			Correction: correction,
		})
	}

	add(domain.SlotOrderID, extractOrderID(text), confidenceOrderID)
	add(domain.SlotContact, extractContact(text), confidenceContact)
	add(domain.SlotBudgetBand, extractBudget(lowered), confidenceBudget)
	add(domain.SlotDeadline, extractDeadline(lowered), confidenceDeadline)
	add(domain.SlotGoal, extractGoal(lowered), confidenceGoal)
	add(domain.SlotRequestedItem, extractRequestedItem(lowered), confidenceItem)

	return updates
}

// Validate checks a slot value against its recognizer's format. Returns a
// user-facing message when invalid.
func (e *Extractor) Validate(name, value string) (bool, string) {
	switch name {
	case domain.SlotContact:
		if value == "" {
			return false, "Контакт не может быть пустым"
		}
		for _, pattern := range phonePatterns {
			if pattern.MatchString(value) {
				return true, ""
			}
		}
		if emailPattern.MatchString(value) {
			return true, ""
		}
		return false, "Укажите корректный телефон или email"
	case domain.SlotOrderID:
		if !digitsOnly.MatchString(value) {
			return false, "Номер заказа должен быть числом"
		}
	case domain.SlotBudgetBand:
		if !strings.ContainsAny(value, "0123456789") {
			return false, "Укажите бюджет числом"
		}
	}
	return true, ""
}

func isCorrection(lowered string) bool {
	for _, marker := range correctionMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

func extractOrderID(text string) string {
	for _, pattern := range orderIDPatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			return match[1]
		}
	}
	return ""
}

func extractContact(text string) string {
	for _, pattern := range phonePatterns {
		if match := pattern.FindString(text); match != "" {
			return match
		}
	}
	return emailPattern.FindString(text)
}

func extractBudget(lowered string) string {
	for _, pattern := range budgetPatterns {
		match := pattern.FindStringSubmatch(lowered)
		if match == nil {
			continue
		}
		amount := match[1]
		if budgetThousands.MatchString(lowered) {
			return amount + "000 руб"
		}
		return amount + " руб"
	}
	return ""
}

func extractDeadline(lowered string) string {
	for _, literal := range deadlineLiterals {
		if strings.Contains(lowered, literal) {
			return literal
		}
	}
	return deadlinePattern.FindString(lowered)
}

func extractGoal(lowered string) string {
	for _, bucket := range goalBuckets {
		for _, keyword := range bucket.keywords {
			if strings.Contains(lowered, keyword) {
				return bucket.name
			}
		}
	}
	return ""
}

func extractRequestedItem(lowered string) string {
	for _, keyword := range itemKeywords {
		if strings.Contains(lowered, keyword) {
			return keyword
		}
	}
	return ""
}
