// Package session implements the stateful append protocol (§4.4) that
// produces a linked, signed sequence of logentry.Message values for one
// conversation. A Session is a single-writer object: Append must be
// serialized by the caller or, as here, guarded by an internal mutex.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Krakalus/ledger/internal/clock"
	"github.com/Krakalus/ledger/pkg/keys"
	"github.com/Krakalus/ledger/pkg/logentry"
)

// Store is the subset of the persistence boundary a Session depends on.
// Defined here (rather than imported from pkg/store) so the core never
// takes a hard dependency on any particular storage backend — callers
// wire in pkg/store's concrete Put.
type Store interface {
	Put(ctx context.Context, m logentry.Message) error
}

// Session holds the mutable per-conversation state: the next sequence
// number and the digest of the most recently appended message.
type Session struct {
	mu        sync.Mutex
	sessionID string
	label     string
	nextSeq   int64
	lastHash  string
	clock     clock.Clock
	store     Store
}

// New creates a Session for sessionID with a fresh chain (next_seq=0,
// last_hash=zero). If store is non-nil, each successful Append also
// persists the message before returning it to the caller.
func New(sessionID string, store Store) *Session {
	return NewWithClock(sessionID, store, clock.Wall{})
}

// NewWithClock is New with an injected clock, used by tests that need
// deterministic timestamps (§9 Design Notes).
func NewWithClock(sessionID string, store Store, c clock.Clock) *Session {
	return &Session{
		sessionID: sessionID,
		lastHash:  logentry.ZeroHash,
		clock:     c,
		store:     store,
	}
}

// Label returns the session's free-text display label, if one was set.
func (s *Session) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

// SetLabel attaches a free-text label to the session for CLI display
// only. It is never part of the signable view, and Session itself does
// not persist it; a label that survives a process restart is kept
// through pkg/store's SetLabel, outside the chain.
func (s *Session) SetLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
}

// NextSeq returns the sequence number the next Append will use.
func (s *Session) NextSeq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextSeq
}

// LastHash returns the digest of the most recently appended message's
// signable view, or the zero hash if nothing has been appended yet.
func (s *Session) LastHash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHash
}

// Append builds, signs, and chains a new message, then (if a Store was
// configured) persists it. The session's chain state is committed
// (step 5 of §4.4) before the message is returned, so no caller ever
// observes an un-chained draft. On any failure — canonicalization,
// signing, or persistence — the session's state is left unchanged and
// no partial message is returned.
func (s *Session) Append(ctx context.Context, content, role string, kp keys.KeyPair, agentID string) (logentry.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := FormatTimestamp(s.clock.Now())

	draft := logentry.Message{
		SessionID: s.sessionID,
		Seq:       s.nextSeq,
		Timestamp: ts,
		Role:      role,
		AgentID:   agentID,
		Content:   content,
		PrevHash:  s.lastHash,
		Scheme:    logentry.SchemeEd25519V1,
		PublicKey: kp.PublicKeyB64URL(),
	}

	signedBytes, err := logentry.SignedBytes(draft)
	if err != nil {
		return logentry.Message{}, fmt.Errorf("session: canonicalization failed: %w", err)
	}

	sig, err := kp.Sign(signedBytes)
	if err != nil {
		return logentry.Message{}, fmt.Errorf("session: signing failed: %w", err)
	}
	draft.Signature = sig

	digest, err := logentry.Digest(draft)
	if err != nil {
		return logentry.Message{}, fmt.Errorf("session: digest computation failed: %w", err)
	}

	if s.store != nil {
		if err := s.store.Put(ctx, draft); err != nil {
			return logentry.Message{}, fmt.Errorf("session: store put failed: %w", err)
		}
	}

	s.lastHash = digest
	s.nextSeq++

	return draft, nil
}

// timestampFormat is the millisecond-precision RFC 3339 layout Append
// uses; adapters reach it through the exported FormatTimestamp.
const timestampFormat = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in the log's canonical timestamp form:
// RFC 3339 at millisecond precision, UTC, trailing Z.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}
