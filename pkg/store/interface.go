// Package store defines the persistence boundary (§6.1) for attested
// log messages. It is external to the cryptographic core in
// pkg/logentry, pkg/keys, and pkg/session: nothing in those packages
// imports it. Concrete backends live in pkg/store/memory and
// pkg/store/sqlite.
package store

import (
	"context"
	"errors"

	"github.com/Krakalus/ledger/pkg/logentry"
)

// ErrSeqConflict is returned by Put when (session_id, seq) already
// holds a message that differs in any field (signature included) from
// the one being put. Re-putting an identical message is idempotent and
// returns nil. The memory backend also returns it for a seq beyond the
// session's next free slot.
var ErrSeqConflict = errors.New("store: seq conflict: existing message differs from new one")

// Store is the persistence boundary a session writes through and a
// verifier or CLI reads back from. Put must be safe to retry: putting
// the same message twice is a no-op, but putting a different message
// at an already-occupied (session_id, seq) fails with ErrSeqConflict.
//
// SetLabel/GetLabel persist the session's free-text display label
// (§3/§4.4) alongside the chain, not inside it: a label is never
// covered by any signature or hash and carries no bearing on Chain's
// verdict, so it lives in its own row rather than a message field.
type Store interface {
	Put(ctx context.Context, m logentry.Message) error
	ListSessions(ctx context.Context) ([]string, error)
	GetChain(ctx context.Context, sessionID string) ([]logentry.Message, error)
	SetLabel(ctx context.Context, sessionID, label string) error
	GetLabel(ctx context.Context, sessionID string) (string, error)
}
