package search

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dimexx87/llmstart-homework-m2/internal/logging"
)

// TextSearcher is the free-text search capability the aggregator fans out to.
type TextSearcher interface {
	SearchAPI(ctx context.Context, query string, maxResults int) ([]Snippet, error)
	SearchHTML(ctx context.Context, query string, maxResults int) ([]Snippet, error)
	ProbeWeb(ctx context.Context, query string) ([]Snippet, error)
}

// Aggregator runs the retrieval fallback chain. Every stage is best-effort:
// a failing stage contributes zero snippets and never aborts the chain, so
// SearchAssetInfo always returns a usable Result.
type Aggregator struct {
	searcher     TextSearcher
	quotes       QuoteSource
	stageTimeout time.Duration
}

// NewAggregator wires the aggregator with its search and quote sources.
func NewAggregator(searcher TextSearcher, quotes QuoteSource, stageTimeout time.Duration) *Aggregator {
	if stageTimeout <= 0 {
		stageTimeout = 10 * time.Second
	}
	return &Aggregator{
		searcher:     searcher,
		quotes:       quotes,
		stageTimeout: stageTimeout,
	}
}

// SearchAssetInfo collects general info and recent news about an asset.
//
// Chain order: instant-answer API → HTML scrape (if the API yielded under 2
// results) → structured finance lookup (always) → generic web probe (if the
// finance lookup yielded nothing) → static fallback (if everything else is
// empty). The news branch runs concurrently and independently.
func (a *Aggregator) SearchAssetInfo(ctx context.Context, assetName string) Result {
	var general, news []Snippet

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		general = a.generalInfo(gctx, assetName)
		return nil
	})
	g.Go(func() error {
		news = a.recentNews(gctx, assetName)
		return nil
	})
	_ = g.Wait()

	// Structured finance data is attempted on every request, independent of
	// how the text search went.
	quoteCtx, cancel := context.WithTimeout(ctx, a.stageTimeout)
	quoted := quoteSnippets(quoteCtx, a.quotes, assetName)
	cancel()
	general = append(general, quoted...)

	if len(quoted) == 0 {
		probeCtx, cancel := context.WithTimeout(ctx, a.stageTimeout)
		probed, err := a.searcher.ProbeWeb(probeCtx, assetName)
		cancel()
		if err != nil {
			logging.Debug("web probe failed", "asset", assetName, "error", err)
		} else {
			general = append(general, probed...)
		}
	}

	if len(general) == 0 && len(news) == 0 {
		general = staticFallback(assetName)
		if len(general) > 0 {
			logging.Warn("all retrieval sources empty, using static fallback", "asset", assetName)
		}
	}

	if len(general) > maxGeneralInfo {
		general = general[:maxGeneralInfo]
	}
	if len(news) > maxRecentNews {
		news = news[:maxRecentNews]
	}

	return Result{
		AssetName:    assetName,
		GeneralInfo:  general,
		RecentNews:   news,
		TotalResults: len(general) + len(news),
	}
}

func (a *Aggregator) generalInfo(ctx context.Context, assetName string) []Snippet {
	apiCtx, cancel := context.WithTimeout(ctx, a.stageTimeout)
	results, err := a.searcher.SearchAPI(apiCtx, fmt.Sprintf("%s котировки цена", assetName), 2)
	cancel()
	if err != nil {
		logging.Debug("instant answer search failed", "asset", assetName, "error", err)
		results = nil
	}

	if len(results) < 2 {
		htmlCtx, cancel := context.WithTimeout(ctx, a.stageTimeout)
		scraped, err := a.searcher.SearchHTML(htmlCtx, fmt.Sprintf("%s курс цена котировки", assetName), 3)
		cancel()
		if err != nil {
			logging.Debug("html search failed", "asset", assetName, "error", err)
		} else {
			results = append(results, scraped...)
		}
	}
	return results
}

func (a *Aggregator) recentNews(ctx context.Context, assetName string) []Snippet {
	newsCtx, cancel := context.WithTimeout(ctx, a.stageTimeout)
	defer cancel()

	query := fmt.Sprintf("%s новости финансы сегодня финансы биржа акции инвестиции", assetName)
	results, err := a.searcher.SearchAPI(newsCtx, query, maxRecentNews)
	if err != nil {
		logging.Debug("news search failed", "asset", assetName, "error", err)
		return nil
	}
	return results
}
