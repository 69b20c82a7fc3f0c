package engine

import (
	"context"
	"log/slog"
)

// Runner is the single-writer gate in front of the simulation: network
// callbacks enqueue closures, the run loop applies them one at a time
// against the game. No other goroutine touches game state.
type Runner struct {
	ops chan func()
}

// NewRunner creates a runner with a bounded command queue.
func NewRunner() *Runner {
	return &Runner{ops: make(chan func(), 256)}
}

// Do enqueues op for the simulation goroutine. Drops the op when the
// queue is full rather than blocking a network read loop; the client
// retries on its next input.
func (r *Runner) Do(op func()) {
	select {
	case r.ops <- op:
	default:
		slog.Warn("simulation queue full, op dropped")
	}
}

// Run applies queued ops until the context is cancelled. Blocks; call
// from the goroutine that owns the simulation.
func (r *Runner) Run(ctx context.Context) {
	slog.Info("simulation loop started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation loop stopped")
			return
		case op := <-r.ops:
			op()
		}
	}
}
