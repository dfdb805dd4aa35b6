package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/pkg/client"
)

var shutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Stop supervising every watch and terminate the daemon (children are not signaled)",
	Run:   execShutdownCmd,
}

func init() {
	setupCommandPreRun(shutdownCmd, requireDaemonRunning)
	rootCmd.AddCommand(shutdownCmd)
}

func execShutdownCmd(cmd *cobra.Command, args []string) {
	done := make(chan struct{})
	go func() {
		client.Shutdown(socketPath())
		close(done)
	}()

	select {
	case <-done:
		fmt.Println("warden daemon has been stopped.")
	case <-time.After(5 * time.Second):
		fmt.Println("shutdown initiated (timed out waiting for a response).")
	}
}
