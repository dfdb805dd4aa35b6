// Package utils holds the small pieces of process-wide state shared
// between cmd/ and pkg/supervisor's daemon wrapper: the module's display
// name, the daemon's own PID file (distinct from a watch's PID file),
// and the channel the daemon's signal handling reacts to.
package utils

import (
	"fmt"
	"os"
	"strconv"
)

const RuntimeModuleName = "warden"

// SupervisorPid is set once, at startup, to the daemon's own PID.
var SupervisorPid = os.Getpid()

// StopChan receives OS termination signals the daemon reacts to.
var StopChan = make(chan os.Signal, 1)

// InitEnv refreshes SupervisorPid; called once at process start, and
// again after Reborn() in the daemonized child, whose pid differs from
// the parent's.
func InitEnv() {
	SupervisorPid = os.Getpid()
}

// WriteDaemonPid writes the daemon's own PID file, the analogue of
// pkg/supervisor's per-watch pidfile.go for the supervisor process
// itself.
func WriteDaemonPid(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o644)
}

// CheckPerm ensures the daemon's home directory exists and is writable
// by the current process before daemonizing, so a permissions problem
// surfaces as a clear startup error instead of a silent failure to
// write the pid file or control socket after Reborn.
func CheckPerm(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists and is not a directory", dir)
	}
	probe := dir + "/.wperm"
	if err := os.WriteFile(probe, []byte{}, 0o600); err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	return os.Remove(probe)
}
