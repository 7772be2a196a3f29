package memory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomascufaro/whatsup-assistant/internal/llm"
)

func TestBuildContextUnknownChatIsEmpty(t *testing.T) {
	m := NewManager(NewInMemoryStore(), 5)
	assert.Empty(t, m.BuildContext("nadie"))
}

func TestRecordTurnAppendsInOrder(t *testing.T) {
	m := NewManager(NewInMemoryStore(), 5)

	m.RecordTurn("chat-1", "Mi nombre es Carlos", "Mucho gusto, Carlos")

	ctx := m.BuildContext("chat-1")
	require.Len(t, ctx, 2)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "Mi nombre es Carlos"}, ctx[0])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "Mucho gusto, Carlos"}, ctx[1])
}

func TestContextBound(t *testing.T) {
	const maxTurns = 3
	m := NewManager(NewInMemoryStore(), maxTurns)

	for i := 0; i < 10; i++ {
		m.RecordTurn("chat-1", fmt.Sprintf("pregunta %d", i), fmt.Sprintf("respuesta %d", i))
	}

	ctx := m.BuildContext("chat-1")
	require.Len(t, ctx, maxTurns*2)
	// The most recent turns survive, oldest first.
	assert.Equal(t, "pregunta 7", ctx[0].Content)
	assert.Equal(t, "respuesta 9", ctx[len(ctx)-1].Content)
}

func TestTruncationKeepsSuffix(t *testing.T) {
	m := NewManager(NewInMemoryStore(), 2)

	m.RecordTurn("chat-1", "uno", "r-uno")
	m.RecordTurn("chat-1", "dos", "r-dos")
	m.RecordTurn("chat-1", "tres", "r-tres")

	ctx := m.BuildContext("chat-1")
	require.Len(t, ctx, 4)
	assert.Equal(t, "dos", ctx[0].Content)
	assert.Equal(t, "r-dos", ctx[1].Content)
	assert.Equal(t, "tres", ctx[2].Content)
	assert.Equal(t, "r-tres", ctx[3].Content)
}

func TestIsolationBetweenChats(t *testing.T) {
	m := NewManager(NewInMemoryStore(), 5)

	m.RecordTurn("chat-a", "hola", "buenas")

	assert.Len(t, m.BuildContext("chat-a"), 2)
	assert.Empty(t, m.BuildContext("chat-b"))

	m.RecordTurn("chat-b", "qué tal", "bien")
	assert.Len(t, m.BuildContext("chat-a"), 2)
	assert.Len(t, m.BuildContext("chat-b"), 2)
}

func TestClearIsIdempotent(t *testing.T) {
	m := NewManager(NewInMemoryStore(), 5)

	// Clearing an unknown conversation is a no-op.
	m.Clear("desconocido")

	m.RecordTurn("chat-1", "hola", "buenas")
	m.Clear("chat-1")
	assert.Empty(t, m.BuildContext("chat-1"))

	m.Clear("chat-1")
	assert.Empty(t, m.BuildContext("chat-1"))
}

func TestDefaultMaxTurns(t *testing.T) {
	m := NewManager(NewInMemoryStore(), 0)
	for i := 0; i < DefaultMaxTurns+5; i++ {
		m.RecordTurn("chat-1", "u", "a")
	}
	assert.Len(t, m.BuildContext("chat-1"), DefaultMaxTurns*2)
}

func TestTimestampsNonDecreasing(t *testing.T) {
	store := NewInMemoryStore()
	m := NewManager(store, 5)

	m.RecordTurn("chat-1", "uno", "r-uno")
	m.RecordTurn("chat-1", "dos", "r-dos")

	entries := store.Get("chat-1")
	require.Len(t, entries, 4)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Timestamp.Before(entries[i-1].Timestamp))
	}
}
