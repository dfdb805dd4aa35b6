package supervisor

import (
	"context"
	"testing"
	"time"
)

func TestRunWorkerExitsOnQuit(t *testing.T) {
	sv := newTestSupervisor(t, &Watch{Name: "w1", Start: []string{"/bin/true"}})
	rec, _ := sv.Get("w1")

	go runWorker(context.Background(), rec)

	rec.quit()

	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("runWorker did not exit after StateQuit was posted")
	}
}

func TestRunWorkerConsumesDisallowedTransitionWithoutAction(t *testing.T) {
	sv := newTestSupervisor(t, &Watch{Name: "w1", Start: []string{"/bin/true"}})
	rec, _ := sv.Get("w1")

	go runWorker(context.Background(), rec)

	// INIT -> RUNNING is not in the transition table (only INIT ->
	// UNMONITORED is). The worker must consume the wake, advance its
	// notion of lastState, and neither crash nor fire actionRunning's
	// side effects (there are none to observe directly, so the
	// assertion is that the worker keeps running and later transitions
	// still work).
	rec.setState(StateRunning)

	// Give the worker a moment to process the disallowed transition,
	// then confirm it is still alive by quitting it cleanly.
	time.Sleep(50 * time.Millisecond)
	rec.quit()

	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("worker should still be responsive after a disallowed transition")
	}
}

func TestRunWorkerIgnoresIdempotentWake(t *testing.T) {
	sv := newTestSupervisor(t, &Watch{Name: "w1", Start: []string{"/bin/true"}})
	rec, _ := sv.Get("w1")

	// Seed RUNNING before the worker's first wait: INIT -> RUNNING is
	// disallowed, so the seeded wake is consumed without an action and
	// lastState becomes RUNNING. Each later post of RUNNING is then an
	// idempotent wake (current == lastState) that must not disturb the
	// worker.
	rec.state.Store(int32(StateRunning))
	go runWorker(context.Background(), rec)

	rec.setState(StateRunning)
	time.Sleep(20 * time.Millisecond)
	rec.setState(StateRunning)
	time.Sleep(20 * time.Millisecond)

	rec.quit()
	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("worker did not exit cleanly after idempotent wakes")
	}
}

func TestRunWorkerExitsOnContextCancel(t *testing.T) {
	sv := newTestSupervisor(t, &Watch{Name: "w1", Start: []string{"/bin/true"}})
	rec, _ := sv.Get("w1")

	ctx, cancel := context.WithCancel(context.Background())
	go runWorker(ctx, rec)

	cancel()

	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("runWorker did not exit after its context was cancelled")
	}
}
