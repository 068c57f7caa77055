package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dimexx87/llmstart-homework-m2/internal/history"
	"github.com/dimexx87/llmstart-homework-m2/internal/logging"
	"github.com/dimexx87/llmstart-homework-m2/internal/metrics"
	"github.com/dimexx87/llmstart-homework-m2/internal/search"
)

// Retriever augments a query with freshly retrieved snippets. It never
// returns an error; total failure yields an empty Result.
type Retriever interface {
	SearchAssetInfo(ctx context.Context, assetName string) search.Result
}

// Generator assembles the model context for each inbound message, invokes
// the completion endpoint under a deadline, and updates conversation history
// on success only.
type Generator struct {
	completer        Completer
	store            *history.Store
	retriever        Retriever
	maxMessageLength int
	timeout          time.Duration
}

// NewGenerator wires the response pipeline. retriever may be nil, which
// disables augmentation entirely.
func NewGenerator(completer Completer, store *history.Store, retriever Retriever, maxMessageLength int, timeout time.Duration) *Generator {
	return &Generator{
		completer:        completer,
		store:            store,
		retriever:        retriever,
		maxMessageLength: maxMessageLength,
		timeout:          timeout,
	}
}

// Respond produces the reply text for one user message. It always returns
// displayable text and never an error: every failure mode maps to a fixed
// notice. History gains the user turn before the completion call and the
// assistant turn only after a success.
func (g *Generator) Respond(ctx context.Context, chatID int64, userMessage string) string {
	msgLen := utf8.RuneCountInString(userMessage)
	if msgLen > g.maxMessageLength {
		logging.Debug("message over length limit", "chat_id", chatID, "length", msgLen)
		return fmt.Sprintf("Сообщение слишком длинное (%d символов). Максимум %d символов.", msgLen, g.maxMessageLength)
	}
	if strings.TrimSpace(userMessage) == "" {
		return "Пожалуйста, напишите ваш вопрос."
	}

	requestID := uuid.NewString()

	currentInfo := g.retrieve(ctx, requestID, userMessage)

	g.store.Append(chatID, history.RoleUser, userMessage)

	messages := g.store.Context(chatID)
	if currentInfo != "" {
		messages = append(messages, history.Entry{
			Role:    history.RoleSystem,
			Content: fmt.Sprintf(retrievalPreamble, currentInfo),
		})
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	started := time.Now()
	reply, err := g.completer.Complete(callCtx, messages)
	metrics.CompletionDuration.Observe(time.Since(started).Seconds())

	outcome := classifyOutcome(reply, err)
	metrics.CompletionOutcomes.WithLabelValues(string(outcome.Kind)).Inc()

	if outcome.Kind != OutcomeSuccess {
		logging.Error("completion failed",
			"request_id", requestID,
			"chat_id", chatID,
			"kind", outcome.Kind,
			"error", err,
		)
		return failureNotice(outcome.Kind)
	}

	g.store.Append(chatID, history.RoleAssistant, outcome.Text)
	logging.Info("completion succeeded",
		"request_id", requestID,
		"chat_id", chatID,
		"latency_ms", time.Since(started).Milliseconds(),
	)
	return outcome.Text
}

// retrieve runs classification and, when warranted, the retrieval aggregator.
// Retrieval failure must never block response generation, so any problem
// degrades to an empty block.
func (g *Generator) retrieve(ctx context.Context, requestID, userMessage string) string {
	if g.retriever == nil {
		return ""
	}
	query, ok := search.DetectFinancialQuery(userMessage)
	if !ok {
		return ""
	}

	logging.Info("financial query detected", "request_id", requestID, "query", truncate(query, 120))
	result := g.retriever.SearchAssetInfo(ctx, query)
	metrics.RetrievalSnippets.WithLabelValues("general").Add(float64(len(result.GeneralInfo)))
	metrics.RetrievalSnippets.WithLabelValues("news").Add(float64(len(result.RecentNews)))

	formatted := search.FormatResult(result)
	if formatted == "" {
		logging.Debug("retrieval yielded nothing", "request_id", requestID)
	}
	return formatted
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
