package supervisor

import (
	"context"
	"sync"
	"sync/atomic"
)

// Record is the mutable per-watch state record shared between the
// ingestor, dispatch layer, control plane, and the watch's own worker
// goroutine. Only the owning worker goroutine may act on State after
// construction is complete; every other component that wants a
// transition to happen must write the target state and then post the
// wake ("write state then post" discipline).
type Record struct {
	Watch      *Watch
	supervisor *Supervisor

	// state is written by the ingestor/dispatch layer, by other watches'
	// transition actions (never happens today, but the field is exposed
	// for that reason), and by the supervisor (StateQuit). It is read by
	// the owning worker only, always after wake.wait() returns.
	state atomic.Int32

	// pid is written only by the owning worker (inside toUnmonitored and
	// start); read by the dispatch layer doing a linear PID scan. Reads
	// are eventually consistent by design (§5).
	pidMu sync.RWMutex
	pid   int

	wake *wake

	// startedAt/stoppedAt back the status reporting surface; they are
	// bookkeeping only and are not consulted by the transition table.
	timesMu   sync.RWMutex
	startedAt int64
	stoppedAt int64

	done chan struct{}
}

func newRecord(sv *Supervisor, w *Watch) *Record {
	r := &Record{
		Watch:      w,
		supervisor: sv,
		wake:       newWake(),
		done:       make(chan struct{}),
	}
	r.state.Store(int32(StateUnmonitored))
	return r
}

// State returns the record's current shared state.
func (r *Record) State() State {
	return State(r.state.Load())
}

// setState performs the "write state then post" sequence external
// writers (the dispatch layer, the supervisor at shutdown) must use.
// The owning worker itself never calls this: it only ever reads State().
func (r *Record) setState(s State) {
	r.state.Store(int32(s))
	r.wake.post()
}

// PID returns the most recently known child PID for this watch, or 0.
func (r *Record) PID() int {
	r.pidMu.RLock()
	defer r.pidMu.RUnlock()
	return r.pid
}

func (r *Record) storePID(pid int) {
	r.pidMu.Lock()
	r.pid = pid
	r.pidMu.Unlock()
}

func (r *Record) startedAtUnix() int64 {
	r.timesMu.RLock()
	defer r.timesMu.RUnlock()
	return r.startedAt
}

func (r *Record) stoppedAtUnix() int64 {
	r.timesMu.RLock()
	defer r.timesMu.RUnlock()
	return r.stoppedAt
}

func (r *Record) markStarted(unixNano int64) {
	r.timesMu.Lock()
	r.startedAt = unixNano
	r.stoppedAt = 0
	r.timesMu.Unlock()
}

func (r *Record) markStopped(unixNano int64) {
	r.timesMu.Lock()
	r.stoppedAt = unixNano
	r.timesMu.Unlock()
}

// quit terminates the owning worker: it writes StateQuit and posts the
// wake, satisfying the invariant that QUIT is written at most once and
// always followed by a post. Callers must not call quit twice.
func (r *Record) quit() {
	r.setState(StateQuit)
}

// waitDone blocks until the worker goroutine owning this record has
// returned, mirroring the join semantics of pthread_join.
func (r *Record) waitDone(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
