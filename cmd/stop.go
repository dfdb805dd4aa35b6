package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/pkg/client"
)

var stopCmd = &cobra.Command{
	Use:   "stop [watch ...]",
	Short: "Stop one or more watches",
	Run:   execStopCmd,
}

func init() {
	setupCommandPreRun(stopCmd, requireDaemonRunning)
	rootCmd.AddCommand(stopCmd)
}

func execStopCmd(cmd *cobra.Command, args []string) {
	printWatches(client.Stop(socketPath(), args...))
}
