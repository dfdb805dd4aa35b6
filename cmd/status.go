package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/pkg/client"
)

var statusCmd = &cobra.Command{
	Use:   "status [watch ...]",
	Short: "Report the current state of one or more watches",
	Run:   execStatusCmd,
}

func init() {
	setupCommandPreRun(statusCmd, requireDaemonRunning)
	rootCmd.AddCommand(statusCmd)
}

func execStatusCmd(cmd *cobra.Command, args []string) {
	printWatches(client.Status(socketPath(), args...))
}
