// Package memory implements pkg/store.Store in process memory. It is
// the default backend for tests and for short-lived CLI invocations
// that pass --db=:memory:.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Krakalus/ledger/pkg/logentry"
	"github.com/Krakalus/ledger/pkg/store"
)

// Store is a goroutine-safe, in-memory implementation of store.Store.
// It keeps messages grouped by session and ordered by seq.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]logentry.Message
	labels   map[string]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		sessions: make(map[string][]logentry.Message),
		labels:   make(map[string]string),
	}
}

// Put appends m to its session's chain. Re-putting an identical
// message at an already-recorded seq is a no-op; putting a different
// message at that seq fails with store.ErrSeqConflict, as does a seq
// that would leave a gap after the chain's last message.
func (s *Store) Put(ctx context.Context, m logentry.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain := s.sessions[m.SessionID]
	if int(m.Seq) < len(chain) {
		existing := chain[m.Seq]
		if messagesEqual(existing, m) {
			return nil
		}
		return store.ErrSeqConflict
	}
	if int(m.Seq) > len(chain) {
		return store.ErrSeqConflict
	}
	s.sessions[m.SessionID] = append(chain, m)
	return nil
}

// ListSessions returns every known session_id, sorted for stable CLI
// output.
func (s *Store) ListSessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// GetChain returns the full, seq-ordered message chain for a session.
// An unknown session_id returns an empty, non-nil slice.
func (s *Store) GetChain(ctx context.Context, sessionID string) ([]logentry.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.sessions[sessionID]
	out := make([]logentry.Message, len(chain))
	copy(out, chain)
	return out, nil
}

// SetLabel attaches a display-only label to sessionID, overwriting any
// prior one. It has no effect on Put/GetChain/verification.
func (s *Store) SetLabel(ctx context.Context, sessionID, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels[sessionID] = label
	return nil
}

// GetLabel returns sessionID's label, or "" if none was set.
func (s *Store) GetLabel(ctx context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.labels[sessionID], nil
}

func messagesEqual(a, b logentry.Message) bool {
	return a.SessionID == b.SessionID &&
		a.Seq == b.Seq &&
		a.Timestamp == b.Timestamp &&
		a.Role == b.Role &&
		a.AgentID == b.AgentID &&
		a.Content == b.Content &&
		a.PrevHash == b.PrevHash &&
		a.Scheme == b.Scheme &&
		a.PublicKey == b.PublicKey &&
		a.Signature == b.Signature
}
