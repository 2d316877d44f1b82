package knowledge

import "strings"

// Russian function words ignored during relevance scoring.
var stopWords = map[string]struct{}{
	"как": {}, "что": {}, "где": {}, "когда": {}, "почему": {}, "зачем": {},
	"какой": {}, "какая": {}, "какие": {}, "это": {}, "мне": {}, "вы": {},
	"ты": {}, "у": {}, "в": {}, "на": {}, "с": {}, "и": {}, "или": {},
	"а": {}, "но": {}, "скажи": {}, "можно": {}, "нужно": {}, "есть": {},
}

// Search returns the best matching FAQ answer and its relevance score.
// Score 0 means no match at all.
func (b *Base) Search(query string) (string, float64) {
	var bestAnswer string
	var bestScore float64
	for _, item := range b.FAQ {
		if score := relevance(query, item); score > bestScore {
			bestScore = score
			bestAnswer = item.Answer
		}
	}
	return bestAnswer, bestScore
}

// relevance scores one FAQ item against the query: exact question inclusion
// dominates, keyword hits weigh heavily, answer-text overlap weighs little.
// Capped at 1.0.
func relevance(query string, item FAQItem) float64 {
	queryLower := strings.ToLower(query)
	score := 0.0

	var queryWords []string
	for _, word := range strings.Fields(queryLower) {
		if len([]rune(word)) <= 3 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		queryWords = append(queryWords, word)
	}
	if len(queryWords) == 0 {
		return 0
	}

	questionLower := strings.ToLower(item.Question)
	if strings.Contains(questionLower, queryLower) {
		score += 1.0
	} else {
		matched := 0
		for _, word := range queryWords {
			if strings.Contains(questionLower, word) {
				matched++
			}
		}
		if matched > 0 {
			score += 0.5 * float64(matched) / float64(len(queryWords))
		}
	}

	for _, keyword := range item.Keywords {
		keywordLower := strings.ToLower(keyword)
		if strings.Contains(queryLower, keywordLower) {
			score += 0.8
			continue
		}
		for _, word := range queryWords {
			if strings.Contains(keywordLower, word) {
				score += 0.3
				break
			}
		}
	}

	answerLower := strings.ToLower(item.Answer)
	if strings.Contains(answerLower, queryLower) {
		score += 0.3
	} else {
		matched := 0
		for _, word := range queryWords {
			if strings.Contains(answerLower, word) {
				matched++
			}
		}
		if matched > 0 {
			score += 0.1 * float64(matched) / float64(len(queryWords))
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
