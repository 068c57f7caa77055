package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/dimexx87/llmstart-homework-m2/internal/history"
)

// Completer is the completion endpoint abstraction used by the generator.
type Completer interface {
	Complete(ctx context.Context, messages []history.Entry) (string, error)
}

// Client talks to an OpenAI-compatible chat completions endpoint, by default
// OpenRouter.
type Client struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
}

// ClientConfig holds the completion endpoint settings.
type ClientConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

// NewClient creates a completion client for the configured endpoint.
func NewClient(cfg ClientConfig) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// Complete sends the assembled context to the completion endpoint and returns
// the assistant text. The caller controls the deadline through ctx.
func (c *Client) Complete(ctx context.Context, messages []history.Entry) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    toParams(messages),
		MaxTokens:   openai.Int(int64(c.maxTokens)),
		Temperature: openai.Float(c.temperature),
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

func toParams(messages []history.Entry) []openai.ChatCompletionMessageParamUnion {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case history.RoleSystem:
			params = append(params, openai.SystemMessage(m.Content))
		case history.RoleAssistant:
			params = append(params, openai.AssistantMessage(m.Content))
		default:
			params = append(params, openai.UserMessage(m.Content))
		}
	}
	return params
}
