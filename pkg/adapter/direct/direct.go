// Package direct wires a session directly to one or more observers:
// every successful Append is fanned out synchronously before it is
// returned to the caller. Use this when the host framework wants to
// react to a message (e.g. forward it to other agents) in the same
// call stack that produced it.
package direct

import (
	"context"
	"sync"

	"github.com/Krakalus/ledger/pkg/adapter"
	"github.com/Krakalus/ledger/pkg/keys"
	"github.com/Krakalus/ledger/pkg/logentry"
)

// Appender is the subset of pkg/session.Session a Relay drives.
type Appender interface {
	Append(ctx context.Context, content, role string, kp keys.KeyPair, agentID string) (logentry.Message, error)
}

// Relay wraps an Appender and notifies a fixed set of observers, in
// registration order, after each successful append. Observer panics
// are not recovered: a misbehaving observer is the host's problem to
// fix, not something to paper over here.
type Relay struct {
	mu        sync.Mutex
	appender  Appender
	observers []adapter.Observer
}

// New returns a Relay over appender with no observers registered.
func New(appender Appender) *Relay {
	return &Relay{appender: appender}
}

// Register adds obs to the fan-out list.
func (r *Relay) Register(obs adapter.Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, obs)
}

// Append appends through the underlying Appender and, only on
// success, notifies every registered observer with the resulting
// message.
func (r *Relay) Append(ctx context.Context, content, role string, kp keys.KeyPair, agentID string) (logentry.Message, error) {
	m, err := r.appender.Append(ctx, content, role, kp, agentID)
	if err != nil {
		return logentry.Message{}, err
	}

	r.mu.Lock()
	observers := make([]adapter.Observer, len(r.observers))
	copy(observers, r.observers)
	r.mu.Unlock()

	for _, obs := range observers {
		obs.OnMessage(ctx, m)
	}
	return m, nil
}
