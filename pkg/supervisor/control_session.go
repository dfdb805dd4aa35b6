package supervisor

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/wardenhq/warden/pkg/codec"
	"github.com/wardenhq/warden/pkg/utils/constants"
	"go.uber.org/zap"
)

// shutdownWithDeadline runs Shutdown against a context bounding how long
// it waits for workers to join before giving up and returning anyway.
func shutdownWithDeadline(sv *Supervisor) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sv.Shutdown(ctx)
}

// frameSocket implements the control plane's wire framing: an 8-byte
// big-endian length prefix followed by that many bytes of CBOR payload.
type frameSocket struct {
	conn net.Conn
}

func (s *frameSocket) recv(n uint64) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.conn, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *frameSocket) send(v []byte) error {
	_, err := s.conn.Write(v)
	return err
}

func (s *frameSocket) recvFrame() ([]byte, error) {
	head, err := s.recv(8)
	if err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint64(head)
	return s.recv(n)
}

func (s *frameSocket) sendFrame(payload []byte) error {
	head := make([]byte, 8)
	binary.BigEndian.PutUint64(head, uint64(len(payload)))
	if err := s.send(head); err != nil {
		return err
	}
	return s.send(payload)
}

func (s *frameSocket) close() error {
	return s.conn.Close()
}

// session handles exactly one client connection: decode one ActionMsg,
// dispatch it against the Supervisor, encode and send back one
// ResponseMsg.
type session struct {
	sv     *Supervisor
	sock   *frameSocket
	logger *zap.SugaredLogger
}

func newSession(sv *Supervisor, conn net.Conn) *session {
	return &session{sv: sv, sock: &frameSocket{conn: conn}, logger: sv.logger.Named("control")}
}

func (se *session) handle() codec.ResponseCtl {
	defer se.sock.close()

	raw, err := se.sock.recvFrame()
	if err != nil {
		return se.reply(se.errorResponse(err))
	}

	dec, err := codec.GetDecoder()
	if err != nil {
		return se.reply(se.errorResponse(err))
	}

	var msg codec.ActionMsg
	if err := dec.Unmarshal(raw, &msg); err != nil {
		return se.reply(se.errorResponse(err))
	}

	return se.reply(se.dispatchAction(&msg))
}

func (se *session) dispatchAction(msg *codec.ActionMsg) (*codec.ResponseMsg, codec.ResponseCtl) {
	names := msg.Watches
	if len(names) == 0 {
		names = se.sv.registry.names()
	}

	switch msg.Action {
	case codec.ActionShutdown:
		go shutdownWithDeadline(se.sv)
		return &codec.ResponseMsg{Message: codec.ActionResponse[msg.Action]}, codec.ResponseShutdown

	case codec.ActionStatus:
		return &codec.ResponseMsg{
			Message: codec.ActionResponse[msg.Action],
			Watches: infosFor(se.sv, names),
		}, codec.ResponseNormal

	case codec.ActionStart, codec.ActionStop, codec.ActionRestart, codec.ActionRestartAll:
		action := msg.Action
		if action == codec.ActionRestartAll {
			action = codec.ActionRestart
			names = se.sv.registry.names()
		}
		if err := se.applyEach(action, names); err != nil {
			return se.errorResponse(err)
		}
		return &codec.ResponseMsg{
			Message: codec.ActionResponse[msg.Action],
			Watches: infosFor(se.sv, names),
		}, codec.ResponseNormal

	case codec.ActionRun:
		if len(msg.CmdLine) == 0 {
			return &codec.ResponseMsg{Message: "run requires a command line"}, codec.ResponseMsgErr
		}
		name := msg.Name
		if name == "" {
			name = fmt.Sprintf("run-%d", time.Now().UnixNano())
		}
		if _, exists := se.sv.Get(name); exists {
			return &codec.ResponseMsg{Message: fmt.Sprintf("watch %q already exists", name)}, codec.ResponseMsgErr
		}
		rec := se.sv.AddWatch(&Watch{Name: name, Start: msg.CmdLine, StopSignal: "TERM"})
		return &codec.ResponseMsg{
			Message: codec.ActionResponse[msg.Action],
			Watches: []*codec.WatchInfo{ToInfo(rec)},
		}, codec.ResponseNormal

	case codec.ActionDump:
		path := msg.Name
		if path == "" {
			path = constants.DaemonDumpFilePath
		}
		if err := se.sv.Dump(path); err != nil {
			return se.errorResponse(err)
		}
		return &codec.ResponseMsg{Message: "dumped watches to " + path}, codec.ResponseNormal

	case codec.ActionLoad:
		path := msg.Name
		if path == "" {
			path = constants.DaemonDumpFilePath
		}
		watches, err := LoadSnapshot(path)
		if err != nil {
			return se.errorResponse(err)
		}
		added := 0
		for _, w := range watches {
			if _, exists := se.sv.Get(w.Name); exists {
				continue
			}
			se.sv.AddWatch(w)
			added++
		}
		return &codec.ResponseMsg{Message: fmt.Sprintf("loaded %d watches from %s", added, path)}, codec.ResponseNormal

	case codec.ActionReload:
		return &codec.ResponseMsg{Message: "reload not supported: restart the daemon to pick up configuration changes"}, codec.ResponseNormal

	default:
		return &codec.ResponseMsg{Message: "unsupported action"}, codec.ResponseMsgErr
	}
}

func (se *session) applyEach(action codec.ActionCtl, names []string) error {
	for _, name := range names {
		var err error
		switch action {
		case codec.ActionStart:
			err = se.sv.Start(name)
		case codec.ActionStop:
			err = se.sv.Stop(name)
		case codec.ActionRestart:
			err = se.sv.Restart(name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (se *session) errorResponse(err error) (*codec.ResponseMsg, codec.ResponseCtl) {
	se.logger.Errorw("control request failed", "error", err)
	return &codec.ResponseMsg{Message: err.Error()}, codec.ResponseMsgErr
}

func (se *session) reply(res *codec.ResponseMsg, result codec.ResponseCtl) codec.ResponseCtl {
	enc, err := codec.GetEncoder()
	if err != nil {
		se.logger.Errorw("encode mode unavailable", "error", err)
		return codec.ResponseMsgErr
	}
	buf, err := enc.Marshal(res)
	if err != nil {
		se.logger.Errorw("encode response failed", "error", err)
		return codec.ResponseMsgErr
	}
	if err := se.sock.sendFrame(buf); err != nil {
		se.logger.Errorw("send response failed", "error", err)
		return codec.ResponseMsgErr
	}
	return result
}

func infosFor(sv *Supervisor, names []string) []*codec.WatchInfo {
	out := make([]*codec.WatchInfo, 0, len(names))
	for _, name := range names {
		if rec, ok := sv.Get(name); ok {
			out = append(out, ToInfo(rec))
		}
	}
	return out
}
