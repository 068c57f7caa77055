package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/dimexx87/llmstart-homework-m2/internal/logging"
)

const (
	ddgAPIBase  = "https://api.duckduckgo.com"
	ddgHTMLBase = "https://html.duckduckgo.com/html"
	webProbeURL = "https://www.google.com/search"

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// financeSites narrows scraped results to well-known market data hosts.
var financeSites = []string{"investing.com", "marketwatch.com", "yahoo.com", "finance"}

// DuckDuckGoClient performs free-text web searches without an API key.
type DuckDuckGoClient struct {
	apiBase    string
	htmlBase   string
	probeBase  string
	httpClient *http.Client
}

// NewDuckDuckGoClient creates a search client with the given per-request
// timeout.
func NewDuckDuckGoClient(timeout time.Duration) *DuckDuckGoClient {
	return &DuckDuckGoClient{
		apiBase:   ddgAPIBase,
		htmlBase:  ddgHTMLBase,
		probeBase: webProbeURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewDuckDuckGoClientWithEndpoints is used by tests to target fake servers.
func NewDuckDuckGoClientWithEndpoints(apiBase, htmlBase, probeBase string, timeout time.Duration) *DuckDuckGoClient {
	c := NewDuckDuckGoClient(timeout)
	c.apiBase = apiBase
	c.htmlBase = htmlBase
	c.probeBase = probeBase
	return c
}

type instantAnswerResponse struct {
	Heading       string `json:"Heading"`
	Abstract      string `json:"Abstract"`
	AbstractURL   string `json:"AbstractURL"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// SearchAPI queries the DuckDuckGo Instant Answer API.
func (c *DuckDuckGoClient) SearchAPI(ctx context.Context, query string, maxResults int) ([]Snippet, error) {
	u := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&skip_disambig=1", c.apiBase, url.QueryEscape(query))
	body, err := c.fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	var parsed instantAnswerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse instant answer response: %w", err)
	}

	var results []Snippet
	if parsed.Abstract != "" {
		title := parsed.Heading
		if title == "" {
			title = "DuckDuckGo Answer"
		}
		results = append(results, Snippet{
			Title:   title,
			Snippet: parsed.Abstract,
			URL:     parsed.AbstractURL,
			Source:  "DuckDuckGo",
		})
	}
	for _, topic := range parsed.RelatedTopics {
		if len(results) >= maxResults {
			break
		}
		if topic.Text == "" {
			continue
		}
		results = append(results, Snippet{
			Title:   truncateRunes(topic.Text, 100),
			Snippet: topic.Text,
			URL:     topic.FirstURL,
			Source:  "DuckDuckGo",
		})
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// SearchHTML scrapes the DuckDuckGo HTML results page, keeping links that
// point at known finance sites.
func (c *DuckDuckGoClient) SearchHTML(ctx context.Context, query string, maxResults int) ([]Snippet, error) {
	scoped := fmt.Sprintf("%s site:investing.com OR site:marketwatch.com OR site:yahoo.com", query)
	u := fmt.Sprintf("%s/?q=%s", c.htmlBase, url.QueryEscape(scoped))
	body, err := c.fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	return parseHTMLResults(string(body), maxResults)
}

// ProbeWeb performs a last-resort generic web search. It only confirms that
// relevant market content exists; it does not extract precise figures.
func (c *DuckDuckGoClient) ProbeWeb(ctx context.Context, query string) ([]Snippet, error) {
	scoped := fmt.Sprintf("%s site:investing.com OR site:marketwatch.com", query)
	u := fmt.Sprintf("%s?q=%s", c.probeBase, url.QueryEscape(scoped))
	body, err := c.fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	content := strings.ToLower(string(body))
	lowerQuery := strings.ToLower(query)
	var results []Snippet
	if strings.Contains(lowerQuery, "доллар") && (strings.Contains(content, "руб") || strings.Contains(content, "rub")) {
		results = append(results, Snippet{
			Title:   "Поиск курса доллара",
			Snippet: "Найдена информация о курсе USD/RUB на финансовых сайтах",
			URL:     "https://www.google.com/finance",
			Source:  "Web Search",
		})
	}
	return results, nil
}

func (c *DuckDuckGoClient) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.8,en-US;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search non-success status=%d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	return body, nil
}

// parseHTMLResults extracts search results from the DuckDuckGo HTML page.
// Result blocks are divs with a "result" class containing a result__a link
// and a result__snippet.
func parseHTMLResults(htmlContent string, maxResults int) ([]Snippet, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse search html: %w", err)
	}

	var results []Snippet
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= maxResults {
			return
		}
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "result") {
			s := extractResult(n)
			if s.URL != "" && len(strings.TrimSpace(s.Title)) > 10 && isFinanceLink(s.URL) {
				results = append(results, s)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	logging.Debug("html search parsed", "results", len(results))
	return results, nil
}

func extractResult(n *html.Node) Snippet {
	var s Snippet
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if hasClass(n, "result__a") {
				s.URL = attrValue(n, "href")
				s.Title = strings.TrimSpace(textContent(n))
			} else if hasClass(n, "result__snippet") {
				s.Snippet = strings.TrimSpace(textContent(n))
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	if s.Snippet == "" && s.URL != "" {
		host := s.URL
		if parsed, err := url.Parse(s.URL); err == nil && parsed.Host != "" {
			host = parsed.Host
		}
		s.Snippet = fmt.Sprintf("Информация с %s", host)
	}
	s.Source = "DuckDuckGo"
	return s
}

func isFinanceLink(link string) bool {
	lower := strings.ToLower(link)
	for _, site := range financeSites {
		if strings.Contains(lower, site) {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" && strings.Contains(attr.Val, class) {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}

func truncateRunes(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars]) + "..."
}
