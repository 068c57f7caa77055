// Package db provides the SQLite-backed update inbox and the append-only
// events audit log.
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Event type constants — process lifecycle events
const (
	EventProcessStarted = "process.started"
	EventProcessStopped = "process.stopped"
)

// Event type constants — dialog events
const (
	EventMessageReceived = "message.received"
	EventDuplicateUpdate = "update.duplicate"
	EventResponseSent    = "response.sent"
	EventResponseFailed  = "response.failed"
	EventHistoryCleared  = "history.cleared"
	EventRetryScheduled  = "retry.scheduled"
	EventRetryExhausted  = "retry.exhausted"
	EventCircuitOpened   = "circuit.opened"
	EventCircuitHalfOpen = "circuit.half_open"
	EventCircuitClosed   = "circuit.closed"
)

// OpenDB opens (or creates) a SQLite database at the given path, ensuring
// that the parent directory exists.
func OpenDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open db at %s: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db at %s: %w", path, err)
	}

	return db, nil
}

// InitSchema creates the events and inbox tables.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY,
			timestamp INTEGER NOT NULL DEFAULT (unixepoch()),
			parent_id INTEGER,
			event_type TEXT NOT NULL,
			payload TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_events_parent_id ON events(parent_id);

		CREATE TABLE IF NOT EXISTS inbox (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			update_id INTEGER NOT NULL UNIQUE,
			chat_id INTEGER NOT NULL,
			text TEXT NOT NULL,
			message_date INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'queued',
			error TEXT,
			created_at INTEGER NOT NULL DEFAULT (unixepoch()),
			updated_at INTEGER NOT NULL DEFAULT (unixepoch())
		);
		CREATE INDEX IF NOT EXISTS idx_inbox_status_id ON inbox(status, id);
	`)
	return err
}

// DeriveOffset returns the next Telegram polling offset derived from the
// inbox table. Returns 0 if the inbox is empty.
func DeriveOffset(database *sql.DB) (int64, error) {
	var offset int64
	err := database.QueryRow(`SELECT COALESCE(MAX(update_id) + 1, 0) FROM inbox`).Scan(&offset)
	return offset, err
}

// EnqueueUpdate records an incoming update for dedup tracking. Returns
// false when the update_id was already seen.
func EnqueueUpdate(database *sql.DB, updateID, chatID int64, text string, messageDate int64) (bool, error) {
	result, err := database.Exec(
		"INSERT OR IGNORE INTO inbox (update_id, chat_id, text, message_date, status, updated_at) VALUES (?, ?, ?, ?, 'queued', unixepoch())",
		updateID, chatID, text, messageDate,
	)
	if err != nil {
		return false, err
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// MarkProcessed records that an update was handled to completion.
func MarkProcessed(database *sql.DB, updateID int64) {
	database.Exec("UPDATE inbox SET status = 'done', updated_at = unixepoch(), error = NULL WHERE update_id = ?", updateID)
}

// MarkFailed records that handling an update ended in a delivery failure.
func MarkFailed(database *sql.DB, updateID int64, errMsg string) {
	database.Exec("UPDATE inbox SET status = 'failed', updated_at = unixepoch(), error = ? WHERE update_id = ?",
		truncate(errMsg, 1000), updateID)
}

// LogEvent inserts an event into the events table and returns its auto-generated id.
// parentID may be nil for root events. payload is serialized to JSON; nil payload stores NULL.
func LogEvent(db *sql.DB, parentID *int64, eventType string, payload map[string]any) (int64, error) {
	var payloadJSON any
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("marshal event payload: %w", err)
		}
		payloadJSON = string(data)
	}

	res, err := db.Exec(
		`INSERT INTO events (parent_id, event_type, payload) VALUES (?, ?, ?)`,
		parentID, eventType, payloadJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("insert event %s: %w", eventType, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get event id: %w", err)
	}
	return id, nil
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
