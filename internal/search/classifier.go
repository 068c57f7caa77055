package search

import "strings"

// financialKeywords lists terms that mark a message as needing fresh market
// data. The set is intentionally narrow; unknown assets fall through to the
// model's own knowledge.
var financialKeywords = []string{
	"акции", "котировки", "курс", "цена", "стоимость", "доллар", "евро", "рубль",
	"сбербанк", "газпром", "яндекс", "тинькофф", "новости", "отчетность",
	"дивиденды", "золото", "нефть", "биткойн", "эфир", "сейчас", "текущий",
	"актуальный", "последний", "свежий", "на сегодня", "на данный момент",
}

// DetectFinancialQuery reports whether a user message needs retrieval
// augmentation. On a keyword match it returns the original message verbatim
// as the search query.
func DetectFinancialQuery(message string) (string, bool) {
	lower := strings.ToLower(message)
	for _, kw := range financialKeywords {
		if strings.Contains(lower, kw) {
			return message, true
		}
	}
	return "", false
}
