package spawn

import (
	"context"
	"time"

	"github.com/adagradschool/scope/internal/constants"
	"github.com/adagradschool/scope/internal/store"
)

// PollWaiter implements loop.Waiter by polling the state store at a fixed
// interval until a session reaches a terminal state, honoring ctx
// cancellation. There is no push-based completion signal available from
// the store layer, so polling is the same mechanism the spawner's own
// readiness wait already uses.
type PollWaiter struct {
	Store    *store.Store
	Interval time.Duration
}

// WaitTerminal blocks until id's session reaches a terminal state.
func (w *PollWaiter) WaitTerminal(ctx context.Context, id string) (string, error) {
	interval := w.Interval
	if interval <= 0 {
		interval = constants.PollInterval
	}
	for {
		sess, err := w.Store.Load(id)
		if err != nil {
			return "", err
		}
		if constants.IsTerminal(sess.State) {
			return sess.State, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}
	}
}
