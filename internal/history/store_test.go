package history

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ContextPrependsSystemPrompt(t *testing.T) {
	s := NewStore("you are a bot", 20)
	s.Append(1, RoleUser, "hello")
	s.Append(1, RoleAssistant, "hi")

	ctx := s.Context(1)
	require.Len(t, ctx, 3)
	assert.Equal(t, Entry{Role: RoleSystem, Content: "you are a bot"}, ctx[0])
	assert.Equal(t, Entry{Role: RoleUser, Content: "hello"}, ctx[1])
	assert.Equal(t, Entry{Role: RoleAssistant, Content: "hi"}, ctx[2])
}

func TestStore_EmptyChatContext(t *testing.T) {
	s := NewStore("prompt", 20)
	ctx := s.Context(42)
	require.Len(t, ctx, 1)
	assert.Equal(t, RoleSystem, ctx[0].Role)
}

func TestStore_TrimsToWindow(t *testing.T) {
	const h = 5
	s := NewStore("prompt", h)
	for i := 0; i < 13; i++ {
		s.Append(7, RoleUser, fmt.Sprintf("msg-%d", i))
	}

	ctx := s.Context(7)
	require.Len(t, ctx, h+1)
	// Trailing window must hold the most recent appends in order.
	for i := 0; i < h; i++ {
		assert.Equal(t, fmt.Sprintf("msg-%d", 13-h+i), ctx[i+1].Content)
	}
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	s := NewStore("prompt", 20)
	s.Append(1, RoleUser, "hello")

	s.Clear(1)
	require.Len(t, s.Context(1), 1)

	// Second clear of an absent chat must not panic or change anything.
	s.Clear(1)
	require.Len(t, s.Context(1), 1)
}

func TestStore_ClearDoesNotAffectOtherChats(t *testing.T) {
	s := NewStore("prompt", 20)
	s.Append(1, RoleUser, "a")
	s.Append(2, RoleUser, "b")

	s.Clear(1)
	assert.Equal(t, 0, s.Len(1))
	assert.Equal(t, 1, s.Len(2))
}

func TestStore_ConcurrentAppendsSurvive(t *testing.T) {
	s := NewStore("prompt", 100)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Append(9, RoleUser, fmt.Sprintf("msg-%d", n))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len(9))
}

func TestStore_ContextReturnsCopy(t *testing.T) {
	s := NewStore("prompt", 20)
	s.Append(1, RoleUser, "original")

	ctx := s.Context(1)
	ctx[1].Content = "mutated"

	assert.Equal(t, "original", s.Context(1)[1].Content)
}
