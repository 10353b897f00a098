package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Krakalus/ledger/internal/clock"
	"github.com/Krakalus/ledger/pkg/keys"
	"github.com/Krakalus/ledger/pkg/logentry"
)

func fixedClock() *clock.Fixed {
	t, _ := time.Parse(time.RFC3339, "2024-01-01T00:00:00Z")
	return clock.NewFixed(t)
}

func TestAppendAdvancesSeqAndChainsHash(t *testing.T) {
	kpA, err := keys.Generate()
	require.NoError(t, err)
	kpB, err := keys.Generate()
	require.NoError(t, err)

	s := NewWithClock("sess-1", nil, fixedClock())

	m0, err := s.Append(context.Background(), "hi", "user", kpA, "agent:a")
	require.NoError(t, err)
	require.Equal(t, int64(0), m0.Seq)
	require.Equal(t, logentry.ZeroHash, m0.PrevHash)

	m1, err := s.Append(context.Background(), "hello", "assistant", kpB, "agent:b")
	require.NoError(t, err)
	require.Equal(t, int64(1), m1.Seq)

	digest0, err := logentry.Digest(m0)
	require.NoError(t, err)
	require.Equal(t, digest0, m1.PrevHash)

	require.Equal(t, int64(2), s.NextSeq())
}

func TestAppendAllowsEmptyContent(t *testing.T) {
	kp, err := keys.Generate()
	require.NoError(t, err)

	s := NewWithClock("sess-empty", nil, fixedClock())
	m, err := s.Append(context.Background(), "", "user", kp, "agent:a")
	require.NoError(t, err)
	require.Equal(t, "", m.Content)
}

func TestAppendTimestampFormat(t *testing.T) {
	kp, err := keys.Generate()
	require.NoError(t, err)

	s := NewWithClock("sess-ts", nil, fixedClock())
	m, err := s.Append(context.Background(), "x", "user", kp, "agent:a")
	require.NoError(t, err)
	require.Equal(t, "2024-01-01T00:00:00.000Z", m.Timestamp)
}

type failingStore struct{}

func (failingStore) Put(ctx context.Context, m logentry.Message) error {
	return context.DeadlineExceeded
}

func TestAppendFailureLeavesStateUnchanged(t *testing.T) {
	kp, err := keys.Generate()
	require.NoError(t, err)

	s := NewWithClock("sess-fail", failingStore{}, fixedClock())
	_, err = s.Append(context.Background(), "x", "user", kp, "agent:a")
	require.Error(t, err)
	require.Equal(t, int64(0), s.NextSeq())
	require.Equal(t, logentry.ZeroHash, s.LastHash())
}
