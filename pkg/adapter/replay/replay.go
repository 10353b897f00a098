// Package replay feeds a previously stored chain through an observer,
// in seq order, so a host framework can reconstruct conversation state
// (e.g. after a restart) without re-deriving it from the store's raw
// rows itself.
package replay

import (
	"context"
	"fmt"

	"github.com/Krakalus/ledger/pkg/adapter"
	"github.com/Krakalus/ledger/pkg/logentry"
)

// ChainGetter is the subset of pkg/store.Store a Player reads from.
type ChainGetter interface {
	GetChain(ctx context.Context, sessionID string) ([]logentry.Message, error)
}

// Player replays a session's chain through an observer.
type Player struct {
	store ChainGetter
}

// New returns a Player reading from store.
func New(store ChainGetter) *Player {
	return &Player{store: store}
}

// Replay loads sessionID's chain and calls obs.OnMessage once per
// message in seq order. It does not verify the chain — callers that
// need an authenticity guarantee should run pkg/verify.Chain first.
func (p *Player) Replay(ctx context.Context, sessionID string, obs adapter.Observer) error {
	chain, err := p.store.GetChain(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("replay: load chain: %w", err)
	}
	for _, m := range chain {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		obs.OnMessage(ctx, m)
	}
	return nil
}
