// Command warden is a UNIX process supervisor: it forks, monitors, and
// restarts a configured set of long-running child processes, exposing
// their status and control over a Unix domain socket.
package main

import "github.com/wardenhq/warden/cmd"

func main() {
	cmd.Execute()
}
