package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatResult_EmptyIsOmitted(t *testing.T) {
	assert.Empty(t, FormatResult(Result{AssetName: "доллар"}))
}

func TestFormatResult_RendersSections(t *testing.T) {
	r := Result{
		AssetName: "доллар",
		GeneralInfo: []Snippet{
			{Title: "Курс USD/RUB", Snippet: "Курс доллара: 95.50 руб.", URL: "https://investing.com/usd-rub", Source: "ЦБ РФ"},
		},
		RecentNews: []Snippet{
			{Title: "Новости рынка", Snippet: "Рубль укрепился на торгах.", URL: "https://example.com/news", Source: "DuckDuckGo"},
		},
		TotalResults: 2,
	}

	text := FormatResult(r)
	assert.Contains(t, text, "«доллар»")
	assert.Contains(t, text, "Найдено 2 источников")
	assert.Contains(t, text, "1. Курс доллара: 95.50 руб.")
	assert.Contains(t, text, "КОТИРОВКАХ И ЦЕНАХ")
	assert.Contains(t, text, "НОВОСТИ И АНАЛИТИКА")
	assert.Contains(t, text, "1. Рубль укрепился на торгах.")
	assert.Contains(t, text, "🔗 Источник: https://example.com/news")
	assert.Contains(t, text, "📈 Источник: https://investing.com/usd-rub")
	assert.Contains(t, text, "ВАЖНО")
}

func TestFormatResult_FallsBackToTitleWhenSnippetEmpty(t *testing.T) {
	r := Result{
		AssetName:    "золото",
		GeneralInfo:  []Snippet{{Title: "Цена золота"}},
		TotalResults: 1,
	}
	assert.Contains(t, FormatResult(r), "1. Цена золота")
}
