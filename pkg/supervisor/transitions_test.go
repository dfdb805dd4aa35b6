package supervisor

import (
	"os"
	"testing"

	"github.com/wardenhq/warden/pkg/logger"
)

func newTestSupervisor(t *testing.T, watches ...*Watch) *Supervisor {
	t.Helper()
	dir := t.TempDir()
	sv := NewSupervisor(logger.Nop(), dir, dir+"/warden.sock", watches)
	return sv
}

func TestTransitionTableIsNotTransitive(t *testing.T) {
	// STOPPED reaches RUNNING only through an intermediate state
	// (STARTING or UNMONITORED), although both of those have an edge to
	// RUNNING; a direct STOPPED -> RUNNING edge would let the table skip
	// the spawn step entirely.
	if transitionTable[StateStopped][StateRunning] != nil {
		t.Fatal("STOPPED -> RUNNING must not be a direct transition")
	}
	// STOPPING reaches RUNNING again only through an intermediate state
	// (STOPPED -> STARTING, or UNMONITORED).
	if transitionTable[StateStopping][StateRunning] != nil {
		t.Fatal("STOPPING -> RUNNING must not be a direct transition")
	}
	// QUIT has no outgoing row at all: the worker loop handles it before
	// consulting the table.
	for to := State(0); to < stateCount; to++ {
		if transitionTable[StateQuit][to] != nil {
			t.Fatalf("QUIT must have no outgoing transitions, found one to %v", to)
		}
	}
}

func TestActionToUnmonitoredNeverLeavesUnmonitored(t *testing.T) {
	sv := newTestSupervisor(t, &Watch{Name: "w1", Start: []string{"/bin/true"}})
	rec, _ := sv.Get("w1")

	// No pid known and no pid file: the watch is not alive.
	if ok := actionToUnmonitored(rec); !ok {
		t.Fatal("actionToUnmonitored must always report success")
	}
	if got := rec.State(); got != StateStopped {
		t.Fatalf("expected STOPPED for an unknown pid, got %v", got)
	}

	// A live pid (this test process itself) should resolve to RUNNING.
	rec.storePID(os.Getpid())
	rec.state.Store(int32(StateUnmonitored))
	if ok := actionToUnmonitored(rec); !ok {
		t.Fatal("actionToUnmonitored must always report success")
	}
	if got := rec.State(); got != StateRunning {
		t.Fatalf("expected RUNNING for a live pid, got %v", got)
	}
}

func TestActionStoppedSchedulesRestart(t *testing.T) {
	sv := newTestSupervisor(t, &Watch{Name: "w1", Start: []string{"/bin/true"}})
	rec, _ := sv.Get("w1")

	if ok := actionStopped(rec); !ok {
		t.Fatal("actionStopped must always report success")
	}
	if got := rec.State(); got != StateStarting {
		t.Fatalf("expected auto-restart to schedule STARTING, got %v", got)
	}
	if rec.stoppedAtUnix() == 0 {
		t.Fatal("expected actionStopped to record a stop timestamp")
	}
}
