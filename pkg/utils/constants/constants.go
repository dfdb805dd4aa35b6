// Package constants
package constants

import (
	"fmt"
	"os"
)

const (
	DefaultLogLevel   = "info"
	DefaultDaemonName = "warden"
)

var WardenHome = getHome()

var DaemonLogFilePath = getDaemonPath("log")
var DaemonPidFilePath = getDaemonPath("pid")
var DaemonSockFilePath = getDaemonPath("sock")
var DaemonDumpFilePath = getDaemonPath("dump")

// PidDirCandidates lists directories tried, in order, for watches' own
// PID files when the configuration sets no pid_dir: a system-wide runtime
// directory first, then a per-user fallback, then /tmp as a last resort
// on a machine with neither available.
var PidDirCandidates = []string{
	"/var/run/warden",
	fmt.Sprintf("%s/.warden/pid", os.Getenv("HOME")),
	"/tmp/warden/pid",
}

func getHome() string {
	return fmt.Sprintf("%s/.warden", os.Getenv("HOME"))
}

func getDaemonPath(suffix string) string {
	return fmt.Sprintf("%s/%s.%s", WardenHome, DefaultDaemonName, suffix)
}
