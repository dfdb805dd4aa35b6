package supervisor

import (
	"fmt"
	"net"

	"github.com/wardenhq/warden/pkg/codec"
)

// SendAction dials the control socket, sends msg, and returns the
// daemon's decoded response. Used by both the CLI and any future
// programmatic client; the CLI package wraps this with presentation.
func SendAction(socketPath string, msg *codec.ActionMsg) (*codec.ResponseMsg, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", socketPath, err)
	}
	defer conn.Close()

	sock := &frameSocket{conn: conn}

	enc, err := codec.GetEncoder()
	if err != nil {
		return nil, err
	}
	payload, err := enc.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	if err := sock.sendFrame(payload); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	raw, err := sock.recvFrame()
	if err != nil {
		return nil, fmt.Errorf("receive response: %w", err)
	}

	dec, err := codec.GetDecoder()
	if err != nil {
		return nil, err
	}

	var res codec.ResponseMsg
	if err := dec.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &res, nil
}
