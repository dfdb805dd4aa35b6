package cmd

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/pkg/codec"
	"github.com/wardenhq/warden/pkg/config"
)

const (
	dialTimeout = 500 * time.Millisecond
	timeLayout  = time.RFC3339
)

// setupCommandPreRun wires fn to run after rootCmd's own PersistentPreRun
// (which loads configuration), for every subcommand that needs the
// daemon reachable before doing its own work.
func setupCommandPreRun(cmd *cobra.Command, fn func()) {
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		rootCmd.PersistentPreRun(cmd, args)
		fn()
	}
}

// isDaemonRunning probes the control socket rather than trusting a pid
// file: a stale pid file left behind by an unclean shutdown would
// otherwise make every subcommand believe the daemon is up when it
// isn't.
func isDaemonRunning() bool {
	sock := socketPath()
	if sock == "" {
		return false
	}
	conn, err := net.DialTimeout("unix", sock, dialTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func socketPath() string {
	if cfg := config.GetConfig(); cfg != nil {
		return cfg.Socket
	}
	return ""
}

// tryRunDaemon re-execs the current binary as `warden daemon` in the
// background, letting the daemon subcommand's own daemonizing logic
// take over from there.
func tryRunDaemon() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	args := append([]string{"daemon"}, os.Args[2:]...)
	c := exec.Command(exe, args...)
	c.Stderr = os.Stderr
	c.Stdout = os.Stdout
	c.Stdin = os.Stdin

	return c.Start()
}

// requireDaemonRunning checks daemon status and, if not running,
// prints an error and exits the process.
func requireDaemonRunning() {
	if !isDaemonRunning() {
		fmt.Fprintln(os.Stderr, "ERROR: warden daemon is not running. Start it first with `warden start` or `warden daemon`.")
		os.Exit(1)
	}
}

// printWatches renders the watch info slice returned by pkg/client's
// calls in a fixed-width table, the CLI's only output format.
func printWatches(infos []*codec.WatchInfo) {
	if len(infos) == 0 {
		fmt.Println("No watches matched.")
		return
	}
	for _, w := range infos {
		fmt.Printf("%-20s %-12s PID %-8d %s\n", w.Name, w.State, w.Pid, formatTimes(w))
	}
}

func formatTimes(w *codec.WatchInfo) string {
	switch {
	case !w.StopAt.IsZero():
		return "stopped at " + w.StopAt.Format(timeLayout)
	case !w.StartAt.IsZero():
		return "started at " + w.StartAt.Format(timeLayout)
	default:
		return ""
	}
}
