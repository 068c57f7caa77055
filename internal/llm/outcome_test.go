package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
)

func TestClassifyOutcome_Success(t *testing.T) {
	o := classifyOutcome("text", nil)
	assert.Equal(t, OutcomeSuccess, o.Kind)
	assert.Equal(t, "text", o.Text)
}

func TestClassifyOutcome_EmptyReply(t *testing.T) {
	o := classifyOutcome("", nil)
	assert.Equal(t, OutcomeEmptyResponse, o.Kind)
}

func TestClassifyOutcome_DeadlineExceeded(t *testing.T) {
	err := fmt.Errorf("chat completion failed: %w", context.DeadlineExceeded)
	assert.Equal(t, OutcomeTimeout, classifyOutcome("", err).Kind)
}

func TestClassifyOutcome_URLTimeout(t *testing.T) {
	err := &url.Error{Op: "Post", URL: "https://openrouter.ai", Err: context.DeadlineExceeded}
	assert.Equal(t, OutcomeTimeout, classifyOutcome("", err).Kind)
}

func TestClassifyOutcome_APIStatusCodes(t *testing.T) {
	cases := []struct {
		status int
		want   OutcomeKind
	}{
		{401, OutcomeAuthError},
		{403, OutcomeAuthError},
		{429, OutcomeRateLimited},
		{500, OutcomeUnexpected},
	}
	req, _ := http.NewRequest(http.MethodPost, "https://openrouter.ai/api/v1/chat/completions", nil)
	for _, tc := range cases {
		err := fmt.Errorf("chat completion failed: %w", &openai.Error{StatusCode: tc.status, Request: req})
		assert.Equal(t, tc.want, classifyOutcome("", err).Kind, "status %d", tc.status)
	}
}

func TestClassifyOutcome_ConnectionError(t *testing.T) {
	err := &url.Error{Op: "Post", URL: "https://openrouter.ai", Err: errors.New("connection refused")}
	assert.Equal(t, OutcomeConnection, classifyOutcome("", err).Kind)
}

func TestClassifyOutcome_Unexpected(t *testing.T) {
	assert.Equal(t, OutcomeUnexpected, classifyOutcome("", errors.New("weird")).Kind)
}

func TestFailureNotice_DistinctTexts(t *testing.T) {
	kinds := []OutcomeKind{
		OutcomeTimeout, OutcomeAuthError, OutcomeRateLimited,
		OutcomeConnection, OutcomeEmptyResponse, OutcomeUnexpected,
	}
	seen := map[string]OutcomeKind{}
	for _, k := range kinds {
		text := failureNotice(k)
		assert.NotEmpty(t, text)
		if prev, dup := seen[text]; dup {
			t.Fatalf("kinds %s and %s share notice %q", prev, k, text)
		}
		seen[text] = k
	}
}
