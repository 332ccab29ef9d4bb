package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentpipe/core"
)

// Interface compliance (compile-time assertion)
var _ core.SessionStore = (*InMemoryStore)(nil)

func TestInMemoryStore_Lifecycle(t *testing.T) {
	s := NewInMemoryStore()

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	sess, err := s.Create("app", "user", "s-1")
	require.NoError(t, err)
	assert.Equal(t, "app", sess.AppName)
	assert.Equal(t, "user", sess.UserID)

	require.NoError(t, s.AppendTurn("s-1", core.Turn{Query: "q1"}))
	require.NoError(t, s.AppendTurn("s-1", core.Turn{Query: "q2"}))

	got, err := s.Get("s-1")
	require.NoError(t, err)
	turns := got.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, "q1", turns[0].Query)
	assert.Equal(t, "q2", turns[1].Query)

	// snapshots do not alias the stored session
	got.AddTurn(core.Turn{Query: "local"})
	again, _ := s.Get("s-1")
	assert.Len(t, again.Turns(), 2)

	require.NoError(t, s.Delete("s-1"))
	assert.Equal(t, 0, s.Len())
	assert.ErrorIs(t, s.Delete("s-1"), ErrNotFound)
	assert.ErrorIs(t, s.AppendTurn("s-1", core.Turn{}), ErrNotFound)
}

func TestInMemoryStore_CreateRejectsEmptyID(t *testing.T) {
	_, err := NewInMemoryStore().Create("app", "user", "")
	assert.Error(t, err)
}
