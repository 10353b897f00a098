// Package adapter defines the capability a host framework implements
// to be notified of attested log activity, and the two ways messages
// reach it: live, as a session appends, or replayed from a store.
package adapter

import (
	"context"

	"github.com/Krakalus/ledger/pkg/logentry"
)

// Observer is the capability a host multi-agent framework implements.
// The core depends only on this interface, never on a concrete host
// type, so wiring a new framework never touches pkg/session or
// pkg/logentry.
type Observer interface {
	OnMessage(ctx context.Context, m logentry.Message)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(ctx context.Context, m logentry.Message)

// OnMessage calls f.
func (f ObserverFunc) OnMessage(ctx context.Context, m logentry.Message) { f(ctx, m) }
