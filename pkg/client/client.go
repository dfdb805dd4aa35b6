// Package client provides the high-level wrapper CLI commands call
// instead of talking to the control socket directly. It isolates cmd/
// from the wire format and from supervisor's internals.
package client

import (
	"fmt"
	"os"

	"github.com/wardenhq/warden/pkg/codec"
	"github.com/wardenhq/warden/pkg/supervisor"
)

// Start requests that one or more watches begin running. An empty names
// list means every configured watch.
func Start(socketPath string, names ...string) []*codec.WatchInfo {
	return do(socketPath, codec.ActionStart, names)
}

// Stop requests graceful termination of one or more watches.
func Stop(socketPath string, names ...string) []*codec.WatchInfo {
	return do(socketPath, codec.ActionStop, names)
}

// Restart stops then starts one or more watches.
func Restart(socketPath string, names ...string) []*codec.WatchInfo {
	return do(socketPath, codec.ActionRestart, names)
}

// Status reports the current state of one or more watches.
func Status(socketPath string, names ...string) []*codec.WatchInfo {
	return do(socketPath, codec.ActionStatus, names)
}

// Shutdown asks the daemon to stop supervising every watch and exit. The
// watches' child processes are not signaled.
func Shutdown(socketPath string) {
	do(socketPath, codec.ActionShutdown, nil)
}

// Run asks the daemon to register and start a one-off watch built from
// cmdLine, outside the static configuration file.
func Run(socketPath string, cmdLine []string) []*codec.WatchInfo {
	res, err := supervisor.SendAction(socketPath, &codec.ActionMsg{Action: codec.ActionRun, CmdLine: cmdLine})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return nil
	}
	if res.Message != "" {
		fmt.Fprintf(os.Stdout, "%s\n", res.Message)
	}
	return res.Watches
}

// Dump asks the daemon to persist its configured watches to dbPath, or
// its default dump location if dbPath is empty.
func Dump(socketPath, dbPath string) {
	res, err := supervisor.SendAction(socketPath, &codec.ActionMsg{Action: codec.ActionDump, Name: dbPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stdout, "%s\n", res.Message)
}

// Load asks the daemon to register every watch found in a previous
// dump that it doesn't already know about.
func Load(socketPath, dbPath string) {
	res, err := supervisor.SendAction(socketPath, &codec.ActionMsg{Action: codec.ActionLoad, Name: dbPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stdout, "%s\n", res.Message)
}

// Reload sends a reload request and prints the daemon's reply. The
// daemon does not reload configuration at runtime; its reply says a
// restart is needed to pick up changes.
func Reload(socketPath string) {
	res, err := supervisor.SendAction(socketPath, &codec.ActionMsg{Action: codec.ActionReload})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stdout, "%s\n", res.Message)
}

func do(socketPath string, action codec.ActionCtl, names []string) []*codec.WatchInfo {
	res, err := supervisor.SendAction(socketPath, &codec.ActionMsg{Action: action, Watches: names})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return nil
	}
	if res.Message != "" {
		fmt.Fprintf(os.Stdout, "%s\n", res.Message)
	}
	return res.Watches
}
