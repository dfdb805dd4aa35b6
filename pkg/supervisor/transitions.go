package supervisor

import (
	"os"
	"syscall"
	"time"
)

var zeroSignal = syscall.Signal(0)

// action is a transition function: given the record undergoing the
// transition, it performs whatever side effect the (from, to) pair
// requires and reports success. A false return causes the worker to
// restore the record's previous last-observed state.
type action func(r *Record) bool

// transitionTable is the static 7x7 map of legal (from, to) pairs,
// encoded as data rather than nested conditionals: a nil entry means the
// transition is disallowed.
var transitionTable = [stateCount][stateCount]action{
	StateInit: {
		StateUnmonitored: actionToUnmonitored,
	},
	StateUnmonitored: {
		StateStarting: actionStart,
		StateRunning:  actionRunning,
		StateStopping: actionStop,
		StateStopped:  actionStopped,
	},
	StateStarting: {
		StateUnmonitored: actionToUnmonitored,
		StateRunning:     actionRunning,
		StateStopping:    actionStop,
		StateStopped:     actionStopped,
	},
	StateRunning: {
		StateUnmonitored: actionToUnmonitored,
		StateStopping:    actionStop,
		StateStopped:     actionStopped,
	},
	StateStopping: {
		StateUnmonitored: actionToUnmonitored,
		StateStopped:     actionStopped,
	},
	StateStopped: {
		StateUnmonitored: actionToUnmonitored,
		StateStarting:    actionStart,
	},
	// StateQuit has no outgoing row: QUIT is handled by the worker loop
	// before the table is ever consulted.
}

// actionToUnmonitored resolves whether a watch is actually alive right
// now, either from its already-known PID or from its PID file, and
// writes exactly one of RUNNING or STOPPED, so a transition into
// UNMONITORED never leaves the record sitting there.
func actionToUnmonitored(r *Record) bool {
	sv := r.supervisor
	pid := r.PID()

	if pid == 0 {
		if filePid, err := readPidFile(pidFilePath(sv.PidDir, r.Watch.Name)); err == nil {
			pid = filePid
		}
	}

	live := pid > 0 && processIsLive(pid)
	if live {
		r.storePID(pid)
	} else {
		r.storePID(0)
	}

	if live {
		r.setState(StateRunning)
	} else {
		r.setState(StateStopped)
	}
	return true
}

// actionStart invokes the spawn primitive and records the resulting PID.
// It intentionally does not write a new state: the next observed FORK/
// EXIT event, or a poll result, drives the machine onward from here.
func actionStart(r *Record) bool {
	pid, err := spawn(r)
	if err != nil {
		r.supervisor.logger.Errorw("spawn failed", "watch", r.Watch.Name, "error", err)
		return false
	}

	r.storePID(pid)
	r.markStarted(time.Now().UnixNano())
	_ = writePidFile(pidFilePath(r.supervisor.PidDir, r.Watch.Name), pid)

	return true
}

// actionRunning is a pure state marker: the transition to RUNNING itself
// carries the whole effect.
func actionRunning(r *Record) bool {
	return true
}

// actionStop is a pure state marker for the same reason as actionRunning.
// Sending an actual termination signal to the child is a CLI-triggered
// operation, not something the transition table does implicitly on every
// STOPPING observation: termination is initiated by the caller that wrote
// STOPPING, not re-derived here.
func actionStop(r *Record) bool {
	return true
}

// actionStopped implements the auto-restart policy: whenever a watch is
// observed stopped, a restart is scheduled by posting a follow-on wake
// to STARTING.
func actionStopped(r *Record) bool {
	r.markStopped(time.Now().UnixNano())
	removePidFile(pidFilePath(r.supervisor.PidDir, r.Watch.Name))
	r.setState(StateStarting)
	return true
}

// processIsLive probes whether pid names a live process, the Go
// equivalent of `kill(pid, 0)`.
func processIsLive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// os.FindProcess never fails on Unix regardless of whether pid
	// exists, so the real probe is the zero-signal send below.
	return proc.Signal(zeroSignal) == nil
}
