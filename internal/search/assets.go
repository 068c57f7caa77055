package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/dimexx87/llmstart-homework-m2/internal/finance"
	"github.com/dimexx87/llmstart-homework-m2/internal/logging"
)

// QuoteSource provides structured market data lookups.
type QuoteSource interface {
	CurrencyRate(ctx context.Context, from, to string) (finance.Quote, error)
	StockQuote(ctx context.Context, symbol string) (finance.Quote, error)
	CryptoPrice(ctx context.Context, symbol string) (finance.Quote, error)
}

// quoteSnippets pattern-matches the asset text against a fixed set of known
// assets and fetches live data for the first match. The set is deliberately
// narrow: only assets the original keyword table knows get structured data.
func quoteSnippets(ctx context.Context, quotes QuoteSource, assetName string) []Snippet {
	lower := strings.ToLower(assetName)

	switch {
	case containsAny(lower, "доллар", "usd"):
		q, err := quotes.CurrencyRate(ctx, "USD", "RUB")
		if err != nil {
			logging.Debug("usd rate lookup failed", "error", err)
			return nil
		}
		return []Snippet{currencySnippet("Курс доллара", q, "https://cbr.ru")}

	case containsAny(lower, "евро", "eur"):
		q, err := quotes.CurrencyRate(ctx, "EUR", "RUB")
		if err != nil {
			logging.Debug("eur rate lookup failed", "error", err)
			return nil
		}
		return []Snippet{currencySnippet("Курс евро", q, "https://cbr.ru")}

	case containsAny(lower, "сбербанк", "sber"):
		q, err := quotes.StockQuote(ctx, "SBER.ME")
		if err != nil {
			logging.Debug("sber quote lookup failed", "error", err)
			return nil
		}
		return []Snippet{{
			Title:   fmt.Sprintf("%s — котировки", q.Symbol),
			Snippet: fmt.Sprintf("Акции %s: %.2f %s. %s", q.Name, q.Price, q.Currency, changeText(q, "")),
			URL:     "https://finance.yahoo.com",
			Source:  q.Source,
		}}

	case containsAny(lower, "золото", "gold"):
		q, err := quotes.StockQuote(ctx, "GC=F")
		if err != nil {
			logging.Debug("gold quote lookup failed", "error", err)
			return nil
		}
		return []Snippet{{
			Title:   "Цена золота",
			Snippet: fmt.Sprintf("Цена золота: $%.2f за унцию. %s", q.Price, changeText(q, "$")),
			URL:     "https://finance.yahoo.com",
			Source:  q.Source,
		}}

	case containsAny(lower, "биткойн", "bitcoin", "btc"):
		q, err := quotes.CryptoPrice(ctx, "BTC")
		if err != nil {
			logging.Debug("btc price lookup failed", "error", err)
			return nil
		}
		return []Snippet{{
			Title:   "Bitcoin — текущая цена",
			Snippet: fmt.Sprintf("Bitcoin: $%.0f. %s", q.Price, changeText(q, "$")),
			URL:     "https://finance.yahoo.com",
			Source:  q.Source,
		}}
	}
	return nil
}

func currencySnippet(title string, q finance.Quote, url string) Snippet {
	return Snippet{
		Title:   fmt.Sprintf("%s (%s)", title, q.Symbol),
		Snippet: fmt.Sprintf("%s: %.2f руб. %s", title, q.Price, changeText(q, "")),
		URL:     url,
		Source:  q.Source,
	}
}

func changeText(q finance.Quote, unit string) string {
	if q.Change > 0 {
		return fmt.Sprintf("↗️ +%s%.2f (+%.2f%%)", unit, q.Change, q.ChangePercent)
	}
	return fmt.Sprintf("↘️ %s%.2f (%.2f%%)", unit, q.Change, q.ChangePercent)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
