// Package transport defines the messaging transport abstraction the bot
// runs on top of, together with its wire types.
package transport

import (
	"context"
	"strings"
)

// ChatActionTyping is the activity signal shown while a reply is generated.
const ChatActionTyping = "typing"

// Transport is the message source/sink abstraction used by the bot loop.
type Transport interface {
	GetUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]Update, error)
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendChatAction(ctx context.Context, chatID int64, action string) error
}

// Update represents one incoming transport update.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message represents an inbound text message.
type Message struct {
	Chat Chat    `json:"chat"`
	Text *string `json:"text,omitempty"`
	Date int64   `json:"date"`
}

// Chat identifies a conversation.
type Chat struct {
	ID int64 `json:"id"`
}

// Command returns the slash command carried by the message ("start",
// "clear") and whether the message is a command at all. Bot-name suffixes
// ("/clear@my_bot") are stripped.
func (m *Message) Command() (string, bool) {
	if m == nil || m.Text == nil {
		return "", false
	}
	text := strings.TrimSpace(*m.Text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	cmd := strings.Fields(text)[0]
	cmd = strings.TrimPrefix(cmd, "/")
	if at := strings.Index(cmd, "@"); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), cmd != ""
}
