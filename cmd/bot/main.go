package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	botpkg "github.com/dimexx87/llmstart-homework-m2/internal/bot"
	"github.com/dimexx87/llmstart-homework-m2/internal/config"
	"github.com/dimexx87/llmstart-homework-m2/internal/db"
	"github.com/dimexx87/llmstart-homework-m2/internal/finance"
	"github.com/dimexx87/llmstart-homework-m2/internal/history"
	"github.com/dimexx87/llmstart-homework-m2/internal/llm"
	"github.com/dimexx87/llmstart-homework-m2/internal/logging"
	"github.com/dimexx87/llmstart-homework-m2/internal/metrics"
	"github.com/dimexx87/llmstart-homework-m2/internal/search"
	"github.com/dimexx87/llmstart-homework-m2/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Error("configuration error", "err", err)
		os.Exit(1)
	}
	logging.Configure(cfg.LogLevel)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		logging.Error("db open failed", "err", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.InitSchema(database); err != nil {
		logging.Error("db schema init failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Serve(ctx, cfg.MetricsAddr)

	// Transport timeout must outlast the long-poll window.
	tgClient := telegram.NewClient(cfg.TelegramAPIBase, time.Duration(cfg.PollTimeoutSeconds+20)*time.Second)

	searchTimeout := time.Duration(cfg.SearchTimeoutSeconds) * time.Second
	aggregator := search.NewAggregator(
		search.NewDuckDuckGoClient(searchTimeout),
		finance.NewClient(searchTimeout),
		searchTimeout,
	)

	store := history.NewStore(llm.SystemPrompt, cfg.MaxHistory)

	completer := llm.NewClient(llm.ClientConfig{
		APIKey:      cfg.OpenRouterAPIKey,
		BaseURL:     cfg.OpenRouterBaseURL,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})

	generator := llm.NewGenerator(
		completer,
		store,
		aggregator,
		cfg.MaxMessageLength,
		time.Duration(cfg.LLMTimeoutSeconds)*time.Second,
	)

	bot := botpkg.New(cfg, tgClient, generator, store, database)

	logging.Info("starting bot", "model", cfg.Model, "db", cfg.DBPath)
	if err := bot.Run(ctx); err != nil {
		logging.Error("bot stopped with error", "err", err)
		os.Exit(1)
	}
	logging.Info("bot stopped")
}
