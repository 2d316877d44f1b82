// Package nlu implements deterministic natural-language understanding:
// priority-cascaded intent classification and pattern-based slot extraction.
// Both are pure functions of their inputs and static tables, so identical
// input always yields identical output.
package nlu

import (
	"strings"

	"github.com/spec-kit/dialog-engine/internal/domain"
)

const (
	// Minimum score for groups below Complaints. The top three groups fire
	// on any positive score: a faint abuse or privacy signal must never be
	// masked by threshold tuning.
	defaultThreshold = 0.3

	shortUtteranceWords = 5
	shortUtteranceBonus = 0.3
	historyBoost        = 0.2
)

// Classifier maps utterance text to a single ranked intent using an ordered
// pattern registry. Groups are evaluated in fixed descending priority; the
// first group containing a qualifying pattern wins and lower groups are
// never consulted.
type Classifier struct {
	registry map[domain.PriorityGroup][]Pattern
}

// NewClassifier builds a classifier over the built-in intent taxonomy.
func NewClassifier() *Classifier {
	return &Classifier{registry: defaultRegistry()}
}

// Classify returns exactly one intent for the utterance. No qualifying match
// yields the fallback intent in the lowest-priority group with confidence 0.
func (c *Classifier) Classify(text string, history []domain.Message) domain.Intent {
	lowered := strings.ToLower(text)
	historyLowered := loweredHistory(history)

	for _, group := range domain.PriorityGroups() {
		best, found := c.bestInGroup(group, lowered, historyLowered)
		if !found {
			continue
		}
		// Any positive score qualifies in the critical groups; the rest
		// need the minimum threshold.
		if group <= domain.GroupComplaints || best.Confidence >= defaultThreshold {
			return best
		}
	}
	return domain.FallbackIntent()
}

// bestInGroup scores every pattern in the group and returns the highest
// scorer. Ties go to the earliest-registered pattern: later patterns must
// score strictly higher to displace it.
func (c *Classifier) bestInGroup(group domain.PriorityGroup, lowered string, history []string) (domain.Intent, bool) {
	var best domain.Intent
	found := false
	for _, pattern := range c.registry[group] {
		score, matched := scorePattern(pattern, lowered, history)
		if score <= 0 {
			continue
		}
		if !found || score > best.Confidence {
			best = domain.Intent{
				Name:           pattern.Intent,
				Group:          group,
				Confidence:     score,
				MatchedPattern: matched,
			}
			found = true
		}
	}
	return best, found
}

// scorePattern computes the pattern score: fraction of keywords found in the
// utterance, a bonus for short exact utterances, and a boost when the
// pattern's context keywords appear in recent history. A negator present in
// the utterance zeroes the score outright.
func scorePattern(pattern Pattern, lowered string, history []string) (float64, string) {
	for _, negator := range pattern.Negators {
		if strings.Contains(lowered, negator) {
			return 0, ""
		}
	}

	matches := 0
	matched := ""
	for _, keyword := range pattern.Keywords {
		if strings.Contains(lowered, keyword) {
			matches++
			if matched == "" {
				matched = keyword
			}
		}
	}
	if matches == 0 {
		return 0, ""
	}

	score := float64(matches) / float64(len(pattern.Keywords))
	if len(strings.Fields(lowered)) <= shortUtteranceWords {
		score += shortUtteranceBonus
	}
	for _, boost := range pattern.Boosts {
		if containsAny(history, boost) {
			score += historyBoost
			break
		}
	}
	if score > 1.0 {
		score = 1.0
	}
	return score, matched
}

func loweredHistory(history []domain.Message) []string {
	if len(history) == 0 {
		return nil
	}
	lowered := make([]string, 0, len(history))
	for _, msg := range history {
		if msg.Role == "user" {
			lowered = append(lowered, strings.ToLower(msg.Content))
		}
	}
	return lowered
}

func containsAny(haystacks []string, needle string) bool {
	for _, haystack := range haystacks {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
