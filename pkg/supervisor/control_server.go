package supervisor

import (
	"net"
	"os"
	"sync"

	"github.com/wardenhq/warden/pkg/codec"
	"go.uber.org/zap"
)

// Server accepts control-plane connections on a Unix domain socket and
// hands each one to a session. One connection is handled at a time per
// goroutine; stopChan lets ActionShutdown unwind the accept loop from
// within a session goroutine.
type Server struct {
	sv       *Supervisor
	sock     net.Listener
	logger   *zap.SugaredLogger
	wg       sync.WaitGroup
	stopChan chan struct{}
	once     sync.Once
}

// ListenAndServe binds the control socket, removing any stale socket
// file left behind by a previous crashed run, and starts a goroutine that
// accepts connections until Stop is called or ActionShutdown is
// processed. It returns as soon as the socket is bound.
func ListenAndServe(sv *Supervisor, socketPath string) (*Server, error) {
	_ = os.Remove(socketPath)

	sock, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		sv:       sv,
		sock:     sock,
		logger:   sv.logger.Named("control-server"),
		stopChan: make(chan struct{}),
	}

	go srv.acceptLoop()
	return srv, nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.sock.Accept()
		if err != nil {
			select {
			case <-s.stopChan:
				return
			default:
				s.logger.Errorw("accept failed", "error", err)
				continue
			}
		}

		sess := newSession(s.sv, conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if sess.handle() == codec.ResponseShutdown {
				s.Stop()
			}
		}()
	}
}

// Stop closes the listener and waits for in-flight sessions to finish.
// Safe to call more than once.
func (s *Server) Stop() {
	s.once.Do(func() {
		close(s.stopChan)
		_ = s.sock.Close()
	})
	s.wg.Wait()
}
