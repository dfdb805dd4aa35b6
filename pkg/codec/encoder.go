package codec

import (
	"github.com/fxamacker/cbor/v2"
)

var (
	encodeMode cbor.EncMode
	decodeMode cbor.DecMode
)

// GetEncoder returns the shared deterministic CBOR encode mode used for
// every control-plane frame. Deterministic encoding keeps wire captures
// diffable across runs.
func GetEncoder() (cbor.EncMode, error) {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeUnix
	var err error

	if encodeMode == nil {
		encodeMode, err = opts.EncMode()
	}

	return encodeMode, err
}

// GetDecoder returns the shared CBOR decode mode used for every
// control-plane frame.
func GetDecoder() (cbor.DecMode, error) {
	opts := cbor.DecOptions{}
	var err error

	if decodeMode == nil {
		decodeMode, err = opts.DecMode()
	}

	return decodeMode, err
}
