package codec

// ActionCtl identifies a control-plane request sent by a CLI client to
// the supervisor daemon over the Unix domain socket.
type ActionCtl int

const (
	ActionStart ActionCtl = iota
	ActionStop
	ActionRestart
	ActionStatus
	ActionRestartAll
	ActionShutdown
	ActionReload
	ActionRun
	ActionDump
	ActionLoad
)

var ActionResponse = map[ActionCtl]string{
	ActionStart:      "start requested",
	ActionStop:       "stop requested",
	ActionRestart:    "restart requested",
	ActionStatus:     "status",
	ActionRestartAll: "restart-all requested",
	ActionShutdown:   "shutdown requested",
	ActionReload:     "reload requested",
	ActionRun:        "run requested",
	ActionDump:       "dump requested",
	ActionLoad:       "load requested",
}

// ActionMsg is the request frame a client encodes and writes to the
// control socket. Watches selects which watch names the action applies
// to; an empty slice means "every configured watch".
type ActionMsg struct {
	Action  ActionCtl `cbor:"1,keyasint"`
	Watches []string  `cbor:"2,keyasint,omitempty"`
	CmdLine []string  `cbor:"3,keyasint,omitempty"`
	Name    string    `cbor:"4,keyasint,omitempty"`
}
