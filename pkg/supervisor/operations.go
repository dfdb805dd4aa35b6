package supervisor

import (
	"fmt"
	"time"

	"github.com/wardenhq/warden/pkg/codec"
)

// Start requests that a stopped or unmonitored watch begin running. It
// never spawns anything itself: it writes STARTING and posts the wake,
// and the watch's own worker performs the spawn from there.
func (sv *Supervisor) Start(name string) error {
	rec, ok := sv.registry.get(name)
	if !ok {
		return fmt.Errorf("no such watch: %s", name)
	}
	rec.setState(StateStarting)
	return nil
}

// Stop requests graceful termination of a running watch: it writes
// STOPPING and posts the wake, then sends the watch's stop signal to its
// tracked pid via signal below. The transition table's stop action itself
// sends nothing.
func (sv *Supervisor) Stop(name string) error {
	rec, ok := sv.registry.get(name)
	if !ok {
		return fmt.Errorf("no such watch: %s", name)
	}
	rec.setState(StateStopping)
	return sv.signal(rec)
}

// Restart stops then starts a watch. If the watch has no live pid to
// signal, this degenerates into a plain Start.
func (sv *Supervisor) Restart(name string) error {
	if err := sv.Stop(name); err != nil {
		return err
	}
	return sv.Start(name)
}

// StartAll/StopAll/RestartAll apply the corresponding single-watch
// operation to every configured watch, collecting the first error but
// continuing through the rest so one bad watch name doesn't block the
// others.
func (sv *Supervisor) StartAll() error   { return sv.forEach(sv.Start) }
func (sv *Supervisor) StopAll() error    { return sv.forEach(sv.Stop) }
func (sv *Supervisor) RestartAll() error { return sv.forEach(sv.Restart) }

func (sv *Supervisor) forEach(op func(string) error) error {
	var first error
	for _, name := range sv.registry.names() {
		if err := op(name); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// signal sends the watch's configured stop signal (SIGTERM if unset) to
// its currently tracked pid. A watch with no live pid is not an error:
// there is nothing to signal.
func (sv *Supervisor) signal(rec *Record) error {
	pid := rec.PID()
	if pid == 0 {
		return nil
	}
	sig := resolveStopSignal(rec.Watch.StopSignal)
	proc, err := findProcess(pid)
	if err != nil {
		return nil
	}
	return proc.Signal(sig)
}

// ToInfo builds the wire-format snapshot of a record's current status.
func ToInfo(rec *Record) *codec.WatchInfo {
	info := &codec.WatchInfo{
		Name:  rec.Watch.Name,
		Pid:   rec.PID(),
		State: toWireState(rec.State()),
	}
	if at := rec.startedAtUnix(); at != 0 {
		info.StartAt = time.Unix(0, at)
	}
	if at := rec.stoppedAtUnix(); at != 0 {
		info.StopAt = time.Unix(0, at)
	}
	return info
}

func toWireState(s State) codec.WatchState {
	switch s {
	case StateInit:
		return codec.StateInit
	case StateUnmonitored:
		return codec.StateUnmonitored
	case StateStarting:
		return codec.StateStarting
	case StateRunning:
		return codec.StateRunning
	case StateStopping:
		return codec.StateStopping
	case StateStopped:
		return codec.StateStopped
	case StateQuit:
		return codec.StateQuit
	default:
		return codec.StateNotfound
	}
}
