package finance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cbrFixture = `{
	"Date": "2025-01-09T11:30:00+03:00",
	"Valute": {
		"USD": {"Name": "Доллар США", "Value": 95.5, "Previous": 94.3},
		"EUR": {"Name": "Евро", "Value": 104.2, "Previous": 105.0}
	}
}`

const yahooFixture = `{
	"chart": {
		"result": [{
			"meta": {
				"symbol": "GC=F",
				"currency": "USD",
				"regularMarketPrice": 2054.3,
				"chartPreviousClose": 2041.1,
				"longName": "Gold Futures"
			}
		}],
		"error": null
	}
}`

func TestCurrencyRate_CBR(t *testing.T) {
	cbr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(cbrFixture))
	}))
	defer cbr.Close()

	c := NewClientWithEndpoints(cbr.URL, "http://127.0.0.1:0", time.Second)
	q, err := c.CurrencyRate(context.Background(), "USD", "RUB")
	require.NoError(t, err)

	assert.Equal(t, "USD/RUB", q.Symbol)
	assert.InDelta(t, 95.5, q.Price, 1e-9)
	assert.InDelta(t, 1.2, q.Change, 1e-9)
	assert.Equal(t, "ЦБ РФ", q.Source)
	assert.Equal(t, "RUB", q.Currency)
}

func TestCurrencyRate_UnknownCurrencyFallsThrough(t *testing.T) {
	cbr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(cbrFixture))
	}))
	defer cbr.Close()
	yahoo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"CNYRUB=X","currency":"RUB","regularMarketPrice":13.1,"chartPreviousClose":13.0}}],"error":null}}`))
	}))
	defer yahoo.Close()

	c := NewClientWithEndpoints(cbr.URL+"/missing", yahoo.URL, time.Second)
	q, err := c.CurrencyRate(context.Background(), "CNY", "RUB")
	require.NoError(t, err)
	assert.Equal(t, "CNYRUB=X", q.Symbol)
	assert.Equal(t, "Yahoo Finance", q.Source)
}

func TestStockQuote_ParsesChartMeta(t *testing.T) {
	yahoo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "GC=F")
		w.Write([]byte(yahooFixture))
	}))
	defer yahoo.Close()

	c := NewClientWithEndpoints("http://127.0.0.1:0", yahoo.URL, time.Second)
	q, err := c.StockQuote(context.Background(), "GC=F")
	require.NoError(t, err)

	assert.Equal(t, "GC=F", q.Symbol)
	assert.Equal(t, "Gold Futures", q.Name)
	assert.InDelta(t, 2054.3, q.Price, 1e-9)
	assert.InDelta(t, 13.2, q.Change, 1e-6)
	assert.Equal(t, "USD", q.Currency)
}

func TestStockQuote_NonSuccessStatus(t *testing.T) {
	yahoo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer yahoo.Close()

	c := NewClientWithEndpoints("http://127.0.0.1:0", yahoo.URL, time.Second)
	_, err := c.StockQuote(context.Background(), "SBER.ME")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=429")
}

func TestStockQuote_EmptyResult(t *testing.T) {
	yahoo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer yahoo.Close()

	c := NewClientWithEndpoints("http://127.0.0.1:0", yahoo.URL, time.Second)
	_, err := c.StockQuote(context.Background(), "NOPE")
	require.Error(t, err)
}

func TestCryptoPrice_AppendsUSDSuffix(t *testing.T) {
	var requested string
	yahoo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"BTC-USD","currency":"USD","regularMarketPrice":43000,"chartPreviousClose":42000}}],"error":null}}`))
	}))
	defer yahoo.Close()

	c := NewClientWithEndpoints("http://127.0.0.1:0", yahoo.URL, time.Second)
	q, err := c.CryptoPrice(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Contains(t, requested, "BTC-USD")
	assert.InDelta(t, 43000, q.Price, 1e-9)
}
