package codec

import "time"

type ResponseCtl int

const (
	ResponseNormal ResponseCtl = iota
	ResponseShutdown
	ResponseReload
	ResponseMsgErr
)

// WatchInfo is the status snapshot returned for a single watch.
type WatchInfo struct {
	Name    string     `json:"name" cbor:"1,keyasint"`
	Pid     int        `json:"pid" cbor:"2,keyasint"`
	State   WatchState `json:"state" cbor:"3,keyasint"`
	StartAt time.Time  `json:"start_at,omitempty" cbor:"4,keyasint,omitempty"`
	StopAt  time.Time  `json:"stop_at,omitempty" cbor:"5,keyasint,omitempty"`
}

// ResponseMsg is the reply frame the daemon writes back for every
// ActionMsg it processes.
type ResponseMsg struct {
	Code    ResponseCtl  `cbor:"1,keyasint"`
	Message string       `cbor:"2,keyasint"`
	Watches []*WatchInfo `cbor:"3,keyasint,omitempty"`
}
