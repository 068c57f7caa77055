// Package finance fetches quotes from public financial data APIs.
package finance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dimexx87/llmstart-homework-m2/internal/logging"
)

const (
	defaultCBRDailyURL   = "https://www.cbr-xml-daily.ru/daily_json.js"
	defaultYahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"
)

// Quote is a single price observation for an asset.
type Quote struct {
	Symbol        string
	Name          string
	Price         float64
	Change        float64
	ChangePercent float64
	Currency      string
	Source        string
	Timestamp     string
}

// Client queries the CBR daily-rates feed and the Yahoo Finance chart API.
type Client struct {
	cbrURL     string
	yahooBase  string
	httpClient *http.Client
}

// NewClient creates a finance client with the given per-request timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		cbrURL:    defaultCBRDailyURL,
		yahooBase: defaultYahooChartURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientWithEndpoints is used by tests to point the client at fake servers.
func NewClientWithEndpoints(cbrURL, yahooBase string, timeout time.Duration) *Client {
	c := NewClient(timeout)
	c.cbrURL = cbrURL
	c.yahooBase = yahooBase
	return c
}

type cbrResponse struct {
	Date   string `json:"Date"`
	Valute map[string]struct {
		Name     string  `json:"Name"`
		Value    float64 `json:"Value"`
		Previous float64 `json:"Previous"`
	} `json:"Valute"`
}

// CurrencyRate returns the exchange rate for a currency pair. Pairs into RUB
// are served by the CBR daily feed first, with Yahoo as a fallback.
func (c *Client) CurrencyRate(ctx context.Context, from, to string) (Quote, error) {
	if to == "RUB" {
		q, err := c.cbrRate(ctx, from)
		if err == nil {
			return q, nil
		}
		logging.Debug("cbr rate lookup failed, falling back to yahoo", "currency", from, "error", err)
	}
	return c.StockQuote(ctx, fmt.Sprintf("%s%s=X", from, to))
}

func (c *Client) cbrRate(ctx context.Context, currency string) (Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cbrURL, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("create cbr request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("cbr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("cbr non-success status=%d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Quote{}, fmt.Errorf("read cbr response: %w", err)
	}

	var parsed cbrResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Quote{}, fmt.Errorf("parse cbr response: %w", err)
	}

	valute, ok := parsed.Valute[currency]
	if !ok {
		return Quote{}, fmt.Errorf("currency %s not present in cbr feed", currency)
	}

	change := valute.Value - valute.Previous
	changePercent := 0.0
	if valute.Previous != 0 {
		changePercent = change / valute.Previous * 100
	}
	return Quote{
		Symbol:        currency + "/RUB",
		Name:          valute.Name,
		Price:         valute.Value,
		Change:        change,
		ChangePercent: changePercent,
		Currency:      "RUB",
		Source:        "ЦБ РФ",
		Timestamp:     parsed.Date,
	}, nil
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
				LongName           string  `json:"longName"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// StockQuote returns the latest quote for a Yahoo Finance symbol, covering
// stocks, currency pairs ("USDRUB=X") and commodity futures ("GC=F").
func (c *Client) StockQuote(ctx context.Context, symbol string) (Quote, error) {
	url := fmt.Sprintf("%s/%s?interval=1d&range=1d", c.yahooBase, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("create yahoo request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("yahoo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("yahoo non-success status=%d symbol=%s", resp.StatusCode, symbol)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Quote{}, fmt.Errorf("read yahoo response: %w", err)
	}

	var parsed yahooChartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Quote{}, fmt.Errorf("parse yahoo response: %w", err)
	}
	if parsed.Chart.Error != nil {
		return Quote{}, fmt.Errorf("yahoo error for %s: %s", symbol, parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 {
		return Quote{}, fmt.Errorf("yahoo returned no data for %s", symbol)
	}

	meta := parsed.Chart.Result[0].Meta
	if meta.RegularMarketPrice == 0 {
		return Quote{}, fmt.Errorf("yahoo returned no price for %s", symbol)
	}

	name := meta.LongName
	if name == "" {
		name = meta.Symbol
	}
	change := meta.RegularMarketPrice - meta.PreviousClose
	changePercent := 0.0
	if meta.PreviousClose != 0 {
		changePercent = change / meta.PreviousClose * 100
	}
	return Quote{
		Symbol:        meta.Symbol,
		Name:          name,
		Price:         meta.RegularMarketPrice,
		Change:        change,
		ChangePercent: changePercent,
		Currency:      meta.Currency,
		Source:        "Yahoo Finance",
		Timestamp:     time.Now().Format(time.RFC3339),
	}, nil
}

// CryptoPrice returns the USD price for a crypto symbol ("BTC", "ETH").
func (c *Client) CryptoPrice(ctx context.Context, symbol string) (Quote, error) {
	return c.StockQuote(ctx, fmt.Sprintf("%s-USD", symbol))
}
