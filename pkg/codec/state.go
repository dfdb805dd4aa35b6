package codec

// WatchState is the wire representation of a watch's state. It is kept
// distinct from supervisor.State so the control-plane wire format stays
// stable independent of the internal state machine's numbering.
type WatchState string

const (
	StateInit         WatchState = "init"
	StateUnmonitored  WatchState = "unmonitored"
	StateStarting     WatchState = "starting"
	StateRunning      WatchState = "running"
	StateStopping     WatchState = "stopping"
	StateStopped      WatchState = "stopped"
	StateQuit         WatchState = "quit"
	StateNotfound     WatchState = "not_found"
)
