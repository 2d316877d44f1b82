package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBase() *Base {
	return &Base{
		Company: Company{Name: "Студия", Phone: "+7 900 000-00-00"},
		FAQ: []FAQItem{
			{
				Question: "Какие способы оплаты вы принимаете?",
				Answer:   "Принимаем оплату картой и по счёту.",
				Keywords: []string{"оплата", "карта", "счёт"},
			},
			{
				Question: "Есть ли гарантия на работы?",
				Answer:   "Да, гарантия 6 месяцев.",
				Keywords: []string{"гарантия"},
			},
		},
	}
}

func TestSearchBestMatch(t *testing.T) {
	base := testBase()

	answer, score := base.Search("какая у вас гарантия")
	require.Greater(t, score, 0.7)
	assert.Equal(t, "Да, гарантия 6 месяцев.", answer)
}

func TestSearchKeywordHit(t *testing.T) {
	base := testBase()

	answer, score := base.Search("возможна оплата картой?")
	require.Greater(t, score, 0.7)
	assert.Equal(t, "Принимаем оплату картой и по счёту.", answer)
}

func TestSearchNoMatch(t *testing.T) {
	base := testBase()

	_, score := base.Search("совершенно посторонний вопрос про погоду")
	assert.Less(t, score, 0.5)
}

func TestSearchStopWordsOnly(t *testing.T) {
	base := testBase()

	_, score := base.Search("как это")
	assert.Zero(t, score)
}

func TestSearchScoreCapped(t *testing.T) {
	base := testBase()

	_, score := base.Search("оплата карта счёт")
	assert.LessOrEqual(t, score, 1.0)
}

func TestLoadMissingFileYieldsEmptyBase(t *testing.T) {
	base, err := Load("does-not-exist.yaml")
	require.NoError(t, err)
	assert.Empty(t, base.FAQ)

	_, score := base.Search("оплата")
	assert.Zero(t, score)
}
