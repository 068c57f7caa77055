// Package metrics exposes Prometheus instrumentation for the bot.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dimexx87/llmstart-homework-m2/internal/logging"
)

var (
	// MessagesReceived counts inbound text messages accepted for processing.
	MessagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_messages_received_total",
		Help: "Inbound text messages accepted for processing.",
	})

	// CompletionOutcomes counts completion results by outcome kind.
	CompletionOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_completion_outcomes_total",
		Help: "LLM completion outcomes by kind.",
	}, []string{"kind"})

	// CompletionDuration observes wall-clock completion latency.
	CompletionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bot_completion_duration_seconds",
		Help:    "LLM completion latency.",
		Buckets: prometheus.DefBuckets,
	})

	// RetrievalSnippets counts retrieved snippets by branch (general/news).
	RetrievalSnippets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_retrieval_snippets_total",
		Help: "Snippets returned by the retrieval aggregator, by branch.",
	}, []string{"branch"})

	// DeliveryFailures counts reply deliveries that exhausted all attempts.
	DeliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_delivery_failures_total",
		Help: "Replies that could not be delivered after all retry attempts.",
	})
)

// Serve runs a /metrics listener on addr until ctx is cancelled. It is a
// no-op when addr is empty.
func Serve(ctx context.Context, addr string) {
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		logging.Info("metrics listener started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("metrics listener failed", "error", err)
		}
	}()
}
