package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gnuos/daemon"

	"github.com/wardenhq/warden/pkg/utils"
)

var daemonCtx *daemon.Context

// GetDaemon returns the process's daemon.Context, creating it on first
// use. PidFile and workDir come from already-loaded configuration; this
// is deliberately a singleton since a process only ever daemonizes once.
func GetDaemon(pidFile, workDir string) *daemon.Context {
	if daemonCtx == nil {
		daemonCtx = &daemon.Context{
			PidFileName: pidFile,
			PidFilePerm: 0644,
			WorkDir:     workDir,
			Umask:       027,
			Args:        os.Args,
		}
	}
	return daemonCtx
}

// RunDaemon is the top-level lifecycle entry point: optionally reborn
// into the background, start the control server and the supervision
// core, and block until a termination signal arrives or the control
// plane processes an ActionShutdown.
//
// Lifecycle: initialize watches and their workers, run the control
// server, run the event ingestor on this goroutine, and on shutdown
// write QUIT into every record, post every wake, join every worker, and
// close the netlink and control sockets.
func RunDaemon(sv *Supervisor, pidFile, socketPath, workDir string, foreground bool) error {
	defer func() {
		if foreground {
			_ = os.Remove(pidFile)
		} else {
			_ = GetDaemon(pidFile, workDir).Release()
		}
		_ = os.Remove(socketPath)
	}()

	sv.StartedAt = time.Now()

	if foreground {
		if err := utils.WriteDaemonPid(pidFile, utils.SupervisorPid); err != nil {
			return fmt.Errorf("write pid file: %w", err)
		}
	} else {
		d, err := GetDaemon(pidFile, workDir).Reborn()
		if err != nil {
			_ = GetDaemon(pidFile, workDir).Release()
			return fmt.Errorf("daemonize: %w", err)
		}
		if d != nil {
			// Parent branch: the child has been spawned and owns the
			// rest of the lifecycle now.
			sv.Pid = d.Pid
			return nil
		}
		utils.InitEnv()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := ListenAndServe(sv, socketPath)
	if err != nil {
		return fmt.Errorf("start control server: %w", err)
	}

	sv.InitWatches(ctx)

	sv.logger.Infow("warden daemon started", "pid", utils.SupervisorPid)

	signal.Notify(utils.StopChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-utils.StopChan
		switch sig {
		case os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT:
			shutdownWithDeadline(sv)
		}
	}()

	err = sv.Run(ctx)

	server.Stop()
	sv.logger.Infow("warden daemon stopped")
	return err
}
