//go:build linux

package supervisor

import (
	"context"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// startReaper reaps every terminated child on SIGCHLD so the kernel's
// process table never accumulates zombies, running until ctx is
// cancelled. It intentionally never touches a Record: watch state derived
// from process termination is written only through the dispatch layer
// (by the event ingestor and the fallback poller).
func (sv *Supervisor) startReaper(ctx context.Context) {
	sig := make(chan os.Signal, 16)
	signal.Notify(sig, unix.SIGCHLD)

	go func() {
		defer signal.Stop(sig)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sig:
				sv.reapAvailable()
			}
		}
	}()
}

func (sv *Supervisor) reapAvailable() {
	for {
		var status unix.WaitStatus
		pid, err := unix.Wait4(-1, &status, unix.WNOHANG, nil)
		switch {
		case pid > 0:
			sv.logger.Debugw("reaped child", "pid", pid, "exit", status.ExitStatus())
		case err == unix.EINTR:
			continue
		default:
			return
		}
	}
}
