package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Krakalus/ledger/internal/clock"
	"github.com/Krakalus/ledger/pkg/keys"
	"github.com/Krakalus/ledger/pkg/session"
	"github.com/Krakalus/ledger/pkg/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSqlitePutAndGetChain(t *testing.T) {
	kp, err := keys.Generate()
	require.NoError(t, err)

	s := openTestStore(t)
	sess := session.NewWithClock("sess-1", s, clock.Wall{})

	m0, err := sess.Append(context.Background(), "a", "user", kp, "agent:a")
	require.NoError(t, err)
	m1, err := sess.Append(context.Background(), "b", "user", kp, "agent:a")
	require.NoError(t, err)

	chain, err := s.GetChain(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, chain, 2)
	require.Equal(t, m0.Content, chain[0].Content)
	require.Equal(t, m1.Content, chain[1].Content)
}

func TestSqlitePutIdempotentReplay(t *testing.T) {
	kp, err := keys.Generate()
	require.NoError(t, err)

	s := openTestStore(t)
	sess := session.NewWithClock("sess-2", s, clock.Wall{})
	m0, err := sess.Append(context.Background(), "a", "user", kp, "agent:a")
	require.NoError(t, err)

	require.NoError(t, s.Put(context.Background(), m0))
}

func TestSqlitePutConflictingSeqRejected(t *testing.T) {
	kp, err := keys.Generate()
	require.NoError(t, err)

	s := openTestStore(t)
	sess := session.NewWithClock("sess-3", s, clock.Wall{})
	m0, err := sess.Append(context.Background(), "a", "user", kp, "agent:a")
	require.NoError(t, err)

	tampered := m0
	tampered.Content = "different"
	err = s.Put(context.Background(), tampered)
	require.ErrorIs(t, err, store.ErrSeqConflict)
}

func TestSqliteListSessionsSorted(t *testing.T) {
	kp, err := keys.Generate()
	require.NoError(t, err)

	s := openTestStore(t)
	for _, id := range []string{"zebra", "alpha", "mango"} {
		sess := session.NewWithClock(id, s, clock.Wall{})
		_, err := sess.Append(context.Background(), "hi", "user", kp, "agent:a")
		require.NoError(t, err)
	}

	ids, err := s.ListSessions(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "mango", "zebra"}, ids)
}

func TestSqliteGetChainUnknownSessionIsEmpty(t *testing.T) {
	s := openTestStore(t)
	chain, err := s.GetChain(context.Background(), "nope")
	require.NoError(t, err)
	require.Empty(t, chain)
}

func TestSqliteLabelRoundTrip(t *testing.T) {
	s := openTestStore(t)

	label, err := s.GetLabel(context.Background(), "sess-unlabeled")
	require.NoError(t, err)
	require.Empty(t, label)

	require.NoError(t, s.SetLabel(context.Background(), "sess-1", "planning chat"))
	label, err = s.GetLabel(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Equal(t, "planning chat", label)

	require.NoError(t, s.SetLabel(context.Background(), "sess-1", "renamed"))
	label, err = s.GetLabel(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Equal(t, "renamed", label)
}
