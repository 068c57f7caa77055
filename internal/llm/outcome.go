package llm

import (
	"context"
	"errors"
	"net"
	"net/url"

	"github.com/openai/openai-go"
)

// OutcomeKind classifies a completion attempt. Every failure kind maps to a
// fixed user-facing notice; the kinds stay distinguishable in logs and
// metrics even where the user wording is generic.
type OutcomeKind string

const (
	OutcomeSuccess       OutcomeKind = "success"
	OutcomeTimeout       OutcomeKind = "timeout"
	OutcomeAuthError     OutcomeKind = "auth_error"
	OutcomeRateLimited   OutcomeKind = "rate_limited"
	OutcomeConnection    OutcomeKind = "connection_error"
	OutcomeEmptyResponse OutcomeKind = "empty_response"
	OutcomeUnexpected    OutcomeKind = "unexpected"
)

// Outcome is the classified result of one completion call.
type Outcome struct {
	Kind OutcomeKind
	Text string
}

// classifyOutcome maps a completion reply/error pair onto an Outcome.
func classifyOutcome(reply string, err error) Outcome {
	if err == nil {
		if reply == "" {
			return Outcome{Kind: OutcomeEmptyResponse}
		}
		return Outcome{Kind: OutcomeSuccess, Text: reply}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Outcome{Kind: OutcomeTimeout}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Outcome{Kind: OutcomeTimeout}
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403:
			return Outcome{Kind: OutcomeAuthError}
		case 429:
			return Outcome{Kind: OutcomeRateLimited}
		}
		return Outcome{Kind: OutcomeUnexpected}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return Outcome{Kind: OutcomeConnection}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return Outcome{Kind: OutcomeConnection}
	}

	return Outcome{Kind: OutcomeUnexpected}
}

// failureNotice returns the fixed user-facing text for a failure kind.
func failureNotice(kind OutcomeKind) string {
	switch kind {
	case OutcomeTimeout:
		return "Запрос занял слишком много времени. Попробуйте позже или упростите вопрос."
	case OutcomeAuthError:
		return "Ошибка аутентификации. Обратитесь к администратору."
	case OutcomeRateLimited:
		return "Превышен лимит запросов. Пожалуйста, подождите немного перед следующим сообщением."
	case OutcomeConnection:
		return "Проблемы с подключением к сервису. Попробуйте позже."
	case OutcomeEmptyResponse:
		return "Получен пустой ответ от ассистента. Попробуйте переформулировать вопрос."
	default:
		return "Произошла неожиданная ошибка. Попробуйте позже или обратитесь к поддержке."
	}
}
