package search

import (
	"fmt"
	"strings"
)

// FormatResult renders an aggregated result into a single text block suitable
// for injection into the model context. Returns "" when there is nothing to
// inject, so callers can skip the block entirely.
func FormatResult(r Result) string {
	if r.TotalResults == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== АКТУАЛЬНАЯ ИНФОРМАЦИЯ ИЗ ИНТЕРНЕТА ПО «%s» ===\n", r.AssetName))
	sb.WriteString(fmt.Sprintf("Найдено %d источников информации:\n\n", r.TotalResults))

	if len(r.GeneralInfo) > 0 {
		sb.WriteString("📊 ДАННЫЕ О КОТИРОВКАХ И ЦЕНАХ:\n")
		for i, s := range r.GeneralInfo {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, snippetText(s)))
			if s.URL != "" && isFinanceLink(s.URL) {
				sb.WriteString(fmt.Sprintf("   📈 Источник: %s\n", s.URL))
			}
		}
		sb.WriteString("\n")
	}

	if len(r.RecentNews) > 0 {
		sb.WriteString("📰 АКТУАЛЬНЫЕ НОВОСТИ И АНАЛИТИКА:\n")
		for i, s := range r.RecentNews {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, snippetText(s)))
			if s.URL != "" {
				sb.WriteString(fmt.Sprintf("   🔗 Источник: %s\n", s.URL))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("⚠️ ВАЖНО: Используй эту информацию как дополнение к анализу, проверяй актуальность данных.\n")
	sb.WriteString("=== КОНЕЦ ПОИСКОВЫХ ДАННЫХ ===\n")
	return sb.String()
}

func snippetText(s Snippet) string {
	text := s.Snippet
	if text == "" {
		text = s.Title
	}
	return truncateRunes(text, 300)
}
