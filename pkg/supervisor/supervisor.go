// Package supervisor implements the process supervision core: the
// per-watch state machine, the netlink process-event ingestor, and the
// per-watch worker model that ties them together.
//
// Architecture: a Supervisor owns a registry of Records, one per
// configured Watch, each driven by its own worker goroutine. The
// ingestor runs on the goroutine that calls Run and is the primary
// source of state transitions; a fallback poller and the control plane
// (control_session.go) are the other two writers of Record.state.
// Every writer other than a Record's own worker follows the "write
// state then post" discipline documented on Record.setState.
//
// File organization:
//   - watch.go: the immutable Watch and State types
//   - wake.go: the per-record wake primitive
//   - record.go: the mutable per-watch Record
//   - transitions.go: the transition table and its actions
//   - worker.go: the per-watch worker loop
//   - spawn.go, pidfile.go: the fork/exec primitive and its bookkeeping
//   - ingest_linux.go, poller.go: the two writers of process-derived
//     state; reaper_linux.go reaps children without touching any Record
//   - dispatch.go: the two entry points those writers call through
//   - registry.go, supervisor.go: the top-level Supervisor type
package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Supervisor owns the full set of watches, their records, worker
// goroutines, and the process-event ingestor.
type Supervisor struct {
	PidDir string
	Socket string

	StartedAt time.Time
	Pid       int

	logger   *zap.SugaredLogger
	registry *registry

	mu       sync.Mutex
	workerWG sync.WaitGroup

	in  *ingestor
	ctx context.Context

	shutdownOnce sync.Once
}

// NewSupervisor builds a Supervisor over a resolved watch set. It does
// not start anything: call InitWatches then Run.
func NewSupervisor(logger *zap.SugaredLogger, pidDir, socket string, watches []*Watch) *Supervisor {
	sv := &Supervisor{
		PidDir:   pidDir,
		Socket:   socket,
		logger:   logger,
		registry: newRegistry(),
		Pid:      0,
	}
	for _, w := range watches {
		sv.registry.add(newRecord(sv, w))
	}
	return sv
}

// InitWatches starts one worker goroutine per configured watch. Each
// record's wake was seeded during construction, so every worker
// immediately processes its (INIT, UNMONITORED) transition without
// waiting for an external prompt.
func (sv *Supervisor) InitWatches(ctx context.Context) {
	sv.mu.Lock()
	sv.ctx = ctx
	sv.mu.Unlock()

	for _, rec := range sv.registry.all() {
		rec := rec
		sv.workerWG.Add(1)
		go func() {
			defer sv.workerWG.Done()
			runWorker(ctx, rec)
		}()
	}
}

// AddWatch registers a new watch at runtime and starts its worker
// goroutine against the context InitWatches was called with. Used by
// the control plane's ActionRun (ad hoc one-off commands) and
// ActionLoad (restoring a dump snapshot) to grow the registry after
// startup, something the static configuration path never needs.
func (sv *Supervisor) AddWatch(w *Watch) *Record {
	rec := newRecord(sv, w)
	sv.registry.add(rec)

	sv.mu.Lock()
	ctx := sv.ctx
	sv.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	sv.workerWG.Add(1)
	go func() {
		defer sv.workerWG.Done()
		runWorker(ctx, rec)
	}()
	return rec
}

// Run starts the reaper and fallback poller, then blocks running the
// event ingestor on the calling goroutine until Shutdown wakes it or an
// unrecoverable ingestor error occurs. This is meant to run on the same
// goroutine InitWatches was called from, matching the "ingestor on the
// main thread" arrangement the core is grounded on.
func (sv *Supervisor) Run(ctx context.Context) error {
	in, err := newIngestor(sv)
	if err != nil {
		return fmt.Errorf("start ingestor: %w", err)
	}
	sv.mu.Lock()
	sv.in = in
	sv.mu.Unlock()

	if err := in.subscribe(true); err != nil {
		in.close()
		return fmt.Errorf("subscribe to process events: %w", err)
	}

	sv.startReaper(ctx)
	sv.startPoller(ctx)

	in.run()

	_ = in.subscribe(false)
	in.close()
	return nil
}

// Shutdown writes QUIT into every record and posts every wake, then
// blocks until every worker goroutine has returned or the deadline
// passes. It is safe to call more than once; only the first call has an
// effect.
func (sv *Supervisor) Shutdown(ctx context.Context) {
	sv.shutdownOnce.Do(func() {
		sv.logger.Infow("shutting down", "watches", sv.registry.names())

		for _, rec := range sv.registry.all() {
			rec.quit()
		}

		sv.mu.Lock()
		in := sv.in
		sv.mu.Unlock()
		if in != nil {
			in.wake()
		}

		done := make(chan struct{})
		go func() {
			sv.workerWG.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			sv.logger.Warnw("shutdown deadline exceeded waiting for workers")
		}
	})
}

// Status returns a point-in-time snapshot of every watch, in
// configuration order.
func (sv *Supervisor) Status(names ...string) []*Record {
	if len(names) == 0 {
		return sv.registry.all()
	}
	out := make([]*Record, 0, len(names))
	for _, n := range names {
		if rec, ok := sv.registry.get(n); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Get returns the record for a single watch by name.
func (sv *Supervisor) Get(name string) (*Record, bool) {
	return sv.registry.get(name)
}
