package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const instantAnswerFixture = `{
	"Heading": "Доллар США",
	"Abstract": "Доллар США — денежная единица Соединённых Штатов Америки.",
	"AbstractURL": "https://ru.wikipedia.org/wiki/Доллар_США",
	"RelatedTopics": [
		{"Text": "Курс доллара к рублю на сегодня", "FirstURL": "https://example.com/usd"},
		{"Text": "История курса доллара", "FirstURL": "https://example.com/history"}
	]
}`

const htmlPageFixture = `<html><body>
<div class="result results_links results_links_deep web-result">
  <a class="result__a" href="https://www.investing.com/currencies/usd-rub">USD/RUB - Доллар США Российский Рубль</a>
  <a class="result__snippet" href="https://www.investing.com/currencies/usd-rub">Актуальный курс USD/RUB, графики и аналитика.</a>
</div>
<div class="result results_links results_links_deep web-result">
  <a class="result__a" href="https://example.org/unrelated">Какая-то нефинансовая страница с длинным заголовком</a>
  <a class="result__snippet" href="https://example.org/unrelated">Текст без котировок.</a>
</div>
<div class="result results_links results_links_deep web-result">
  <a class="result__a" href="https://finance.yahoo.com/quote/RUB=X">RUB=X quote on Yahoo Finance page</a>
</div>
</body></html>`

func TestSearchAPI_ParsesAbstractAndTopics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Write([]byte(instantAnswerFixture))
	}))
	defer srv.Close()

	c := NewDuckDuckGoClientWithEndpoints(srv.URL, srv.URL, srv.URL, time.Second)
	results, err := c.SearchAPI(context.Background(), "курс доллара", 5)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "Доллар США", results[0].Title)
	assert.Equal(t, "DuckDuckGo", results[0].Source)
	assert.Contains(t, results[1].Snippet, "Курс доллара")
}

func TestSearchAPI_CapsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(instantAnswerFixture))
	}))
	defer srv.Close()

	c := NewDuckDuckGoClientWithEndpoints(srv.URL, srv.URL, srv.URL, time.Second)
	results, err := c.SearchAPI(context.Background(), "курс доллара", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchAPI_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewDuckDuckGoClientWithEndpoints(srv.URL, srv.URL, srv.URL, time.Second)
	_, err := c.SearchAPI(context.Background(), "query", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=503")
}

func TestSearchHTML_KeepsOnlyFinanceSites(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(htmlPageFixture))
	}))
	defer srv.Close()

	c := NewDuckDuckGoClientWithEndpoints(srv.URL, srv.URL, srv.URL, time.Second)
	results, err := c.SearchHTML(context.Background(), "доллар курс", 5)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Contains(t, results[0].URL, "investing.com")
	assert.Contains(t, results[0].Snippet, "Актуальный курс")
	assert.Contains(t, results[1].URL, "yahoo.com")
	// A result with no snippet falls back to a host mention.
	assert.Contains(t, results[1].Snippet, "finance.yahoo.com")
}

func TestProbeWeb_DollarHeuristic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html><body>Курс составляет 95 руб за доллар</body></html>"))
	}))
	defer srv.Close()

	c := NewDuckDuckGoClientWithEndpoints(srv.URL, srv.URL, srv.URL, time.Second)
	results, err := c.ProbeWeb(context.Background(), "доллар сегодня")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Web Search", results[0].Source)
}

func TestProbeWeb_NoSignalYieldsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html><body>nothing relevant</body></html>"))
	}))
	defer srv.Close()

	c := NewDuckDuckGoClientWithEndpoints(srv.URL, srv.URL, srv.URL, time.Second)
	results, err := c.ProbeWeb(context.Background(), "что-то другое")
	require.NoError(t, err)
	assert.Empty(t, results)
}
