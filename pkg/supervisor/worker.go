package supervisor

import "context"

// runWorker is the state worker loop: one instance runs per Record,
// started as a goroutine by the supervisor in InitWatches or AddWatch. It is the
// single writer of lastState (a local, not shared) and the single
// consumer of r.wake.
func runWorker(ctx context.Context, r *Record) {
	defer close(r.done)

	logger := r.supervisor.logger.With("watch", r.Watch.Name)
	lastState := StateInit

	for {
		if err := r.wake.wait(ctx); err != nil {
			// Shutdown was requested via context rather than via QUIT;
			// this only happens if the supervisor is torn down without
			// going through Shutdown, e.g. in tests. Exit quietly.
			return
		}

		current := r.State()

		if current == StateQuit {
			logger.Infow("watch terminating")
			return
		}

		if current == lastState {
			// Idempotent wake: nothing changed since the last
			// observation, so no action runs.
			continue
		}

		fn := transitionTable[lastState][current]
		if fn == nil {
			logger.Debugw("disallowed transition, consuming without action",
				"from", lastState, "to", current)
			lastState = current
			continue
		}

		if fn(r) {
			lastState = current
		} else {
			// Restore the prior state; do not advance lastState, so a
			// later retry of the same transition is still attempted.
			r.state.Store(int32(lastState))
			logger.Warnw("state transition failed, reverting",
				"from", lastState, "to", current, "pid", r.PID())
		}
	}
}
