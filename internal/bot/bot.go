// Package bot runs the update poll loop and dispatches incoming messages
// to command handlers and the response generator.
package bot

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/dimexx87/llmstart-homework-m2/internal/config"
	"github.com/dimexx87/llmstart-homework-m2/internal/control"
	"github.com/dimexx87/llmstart-homework-m2/internal/db"
	"github.com/dimexx87/llmstart-homework-m2/internal/history"
	"github.com/dimexx87/llmstart-homework-m2/internal/logging"
	"github.com/dimexx87/llmstart-homework-m2/internal/metrics"
	"github.com/dimexx87/llmstart-homework-m2/internal/transport"
)

const welcomeMessage = "👋 Привет! Я LLM-ассистент компании.\n\n" +
	"Я помогу вам:\n" +
	"• Узнать о наших услугах\n" +
	"• Ответить на вопросы\n" +
	"• Подобрать подходящее решение\n\n" +
	"Просто напишите ваш вопрос!\n\n" +
	"Доступные команды:\n" +
	"• /clear - очистить историю диалога"

const clearedMessage = "🗑️ История диалога очищена. Начинаем с чистого листа!"

const deliveryFallback = "Извините, произошла ошибка при обработке вашего сообщения. Попробуйте позже."

// Responder produces the assistant's reply to a user message.
type Responder interface {
	Respond(ctx context.Context, chatID int64, userMessage string) string
}

// Bot wires the transport, the response generator, the history store and
// the inbox database into the long-poll dispatch loop.
type Bot struct {
	transport transport.Transport
	responder Responder
	store     *history.Store
	database  *sql.DB
	circuit   *control.CircuitBreaker
	policy    control.Policy

	pollTimeout    int
	sleep          time.Duration
	dropPending    bool
	typingInterval time.Duration

	rootEventID int64
	wg          sync.WaitGroup
}

// New creates a Bot from loaded configuration and wired dependencies.
func New(cfg config.Config, tr transport.Transport, responder Responder, store *history.Store, database *sql.DB) *Bot {
	typingInterval := time.Duration(cfg.TypingIntervalSeconds) * time.Second
	if typingInterval <= 0 {
		typingInterval = 4 * time.Second
	}
	return &Bot{
		transport:      tr,
		responder:      responder,
		store:          store,
		database:       database,
		circuit:        control.NewCircuitBreaker(5, 30*time.Second),
		policy:         control.Policy{MaxAttempts: cfg.ReplyMaxAttempts},
		pollTimeout:    cfg.PollTimeoutSeconds,
		sleep:          time.Duration(cfg.SleepSeconds) * time.Second,
		dropPending:    cfg.DropPending,
		typingInterval: typingInterval,
	}
}

// Run polls for updates until ctx is cancelled. Message handling runs
// concurrently per update; Run waits for in-flight handlers on exit.
func (b *Bot) Run(ctx context.Context) error {
	b.rootEventID, _ = db.LogEvent(b.database, nil, db.EventProcessStarted, map[string]any{
		"poll_timeout": b.pollTimeout,
	})

	offset, err := db.DeriveOffset(b.database)
	if err != nil {
		return err
	}
	if offset == 0 && b.dropPending {
		if bootstrapped, berr := b.bootstrapOffset(ctx); berr != nil {
			logging.Warn("bootstrap offset failed", "err", berr)
		} else {
			offset = bootstrapped
		}
	}

	logging.Info("bot running", "offset", offset, "poll_timeout", b.pollTimeout)

	for {
		if ctx.Err() != nil {
			break
		}

		prevState := b.circuit.State()
		if !b.circuit.Allow(time.Now()) {
			b.pause(ctx)
			continue
		}
		if prevState == control.CircuitOpen && b.circuit.State() == control.CircuitHalfOpen {
			db.LogEvent(b.database, &b.rootEventID, db.EventCircuitHalfOpen, map[string]any{
				"error_class": b.circuit.OpenedClass(),
			})
		}

		updates, err := b.transport.GetUpdates(ctx, offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logging.Error("getUpdates failed", "err", err)
			prevCircuit := b.circuit.State()
			b.circuit.RecordFailure("telegram_poll", time.Now())
			if prevCircuit != control.CircuitOpen && b.circuit.State() == control.CircuitOpen {
				db.LogEvent(b.database, &b.rootEventID, db.EventCircuitOpened, map[string]any{
					"error_class":      "telegram_poll",
					"threshold":        b.circuit.Threshold,
					"cooldown_seconds": int(b.circuit.Cooldown.Seconds()),
				})
			}
			b.pause(ctx)
			continue
		}
		if b.circuit.State() == control.CircuitHalfOpen {
			b.circuit.RecordSuccess()
			db.LogEvent(b.database, &b.rootEventID, db.EventCircuitClosed, map[string]any{"recovered": true})
		}

		for _, update := range updates {
			offset = update.UpdateID + 1

			if update.Message == nil || update.Message.Text == nil {
				continue
			}
			text := *update.Message.Text
			if text == "" {
				continue
			}
			chatID := update.Message.Chat.ID

			fresh, err := db.EnqueueUpdate(b.database, update.UpdateID, chatID, text, update.Message.Date)
			if err != nil {
				logging.Error("enqueue failed", "update_id", update.UpdateID, "err", err)
				continue
			}
			if !fresh {
				db.LogEvent(b.database, &b.rootEventID, db.EventDuplicateUpdate, map[string]any{
					"update_id": update.UpdateID,
					"chat_id":   chatID,
				})
				continue
			}

			msg := update.Message
			updateID := update.UpdateID
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleMessage(ctx, updateID, chatID, msg)
			}()
		}
	}

	b.wg.Wait()
	db.LogEvent(b.database, &b.rootEventID, db.EventProcessStopped, nil)
	return nil
}

// bootstrapOffset skips updates that accumulated while the bot was down.
func (b *Bot) bootstrapOffset(ctx context.Context) (int64, error) {
	updates, err := b.transport.GetUpdates(ctx, 0, 0)
	if err != nil {
		return 0, err
	}
	if len(updates) == 0 {
		return 0, nil
	}
	return updates[len(updates)-1].UpdateID + 1, nil
}

func (b *Bot) handleMessage(ctx context.Context, updateID, chatID int64, msg *transport.Message) {
	metrics.MessagesReceived.Inc()
	text := *msg.Text

	eventID, _ := db.LogEvent(b.database, &b.rootEventID, db.EventMessageReceived, map[string]any{
		"update_id": updateID,
		"chat_id":   chatID,
		"text":      truncate(text, 1000),
	})
	logging.Info("message received", "chat_id", chatID, "text", truncate(text, 200))

	var reply string
	if cmd, ok := msg.Command(); ok {
		reply = b.handleCommand(chatID, cmd, eventID)
		if reply == "" {
			db.MarkProcessed(b.database, updateID)
			return
		}
	} else {
		reply = b.respondWithTyping(ctx, chatID, text)
	}

	b.deliver(ctx, updateID, chatID, reply, eventID)
}

// handleCommand executes a slash command and returns the confirmation text.
// Unknown commands are ignored.
func (b *Bot) handleCommand(chatID int64, cmd string, parentEventID int64) string {
	switch cmd {
	case "start":
		return welcomeMessage
	case "clear":
		b.store.Clear(chatID)
		db.LogEvent(b.database, &parentEventID, db.EventHistoryCleared, map[string]any{"chat_id": chatID})
		logging.Info("history cleared", "chat_id", chatID)
		return clearedMessage
	default:
		logging.Debug("ignoring unknown command", "chat_id", chatID, "command", cmd)
		return ""
	}
}

// respondWithTyping keeps the typing indicator alive while the generator
// is working. Indicator errors are not fatal to the response.
func (b *Bot) respondWithTyping(ctx context.Context, chatID int64, text string) string {
	typingCtx, stopTyping := context.WithCancel(ctx)
	defer stopTyping()

	go func() {
		ticker := time.NewTicker(b.typingInterval)
		defer ticker.Stop()
		for {
			if err := b.transport.SendChatAction(typingCtx, chatID, transport.ChatActionTyping); err != nil {
				if typingCtx.Err() == nil {
					logging.Debug("typing indicator failed", "chat_id", chatID, "err", err)
				}
			}
			select {
			case <-typingCtx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return b.responder.Respond(ctx, chatID, text)
}

// deliver sends the reply with bounded retries. When all attempts fail it
// makes one best-effort attempt to notify the user before giving up.
func (b *Bot) deliver(ctx context.Context, updateID, chatID int64, reply string, parentEventID int64) {
	var lastErr error
	for attempt := 1; ; attempt++ {
		lastErr = b.transport.SendMessage(ctx, chatID, reply)
		if lastErr == nil {
			db.MarkProcessed(b.database, updateID)
			db.LogEvent(b.database, &parentEventID, db.EventResponseSent, map[string]any{
				"chat_id":  chatID,
				"attempts": attempt,
			})
			return
		}
		if ctx.Err() != nil || !control.ShouldRetry(b.policy, attempt) {
			break
		}
		backoff := control.RetryBackoff(attempt)
		logging.Warn("send failed, retrying", "chat_id", chatID, "attempt", attempt, "backoff", backoff, "err", lastErr)
		db.LogEvent(b.database, &parentEventID, db.EventRetryScheduled, map[string]any{
			"chat_id":         chatID,
			"attempt":         attempt,
			"backoff_seconds": int(backoff.Seconds()),
		})
		select {
		case <-ctx.Done():
		case <-time.After(backoff):
		}
	}

	metrics.DeliveryFailures.Inc()
	logging.Error("delivery exhausted", "chat_id", chatID, "err", lastErr)
	db.MarkFailed(b.database, updateID, lastErr.Error())
	db.LogEvent(b.database, &parentEventID, db.EventRetryExhausted, map[string]any{
		"chat_id": chatID,
		"error":   truncate(lastErr.Error(), 500),
	})
	db.LogEvent(b.database, &parentEventID, db.EventResponseFailed, map[string]any{"chat_id": chatID})

	if ctx.Err() == nil && !strings.EqualFold(reply, deliveryFallback) {
		if err := b.transport.SendMessage(ctx, chatID, deliveryFallback); err != nil {
			logging.Error("fallback notice failed", "chat_id", chatID, "err", err)
		}
	}
}

func (b *Bot) pause(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(b.sleep):
	}
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
