package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/pkg/client"
)

var restartCmd = &cobra.Command{
	Use:   "restart [watch ...]",
	Short: "Restart one or more watches",
	Run:   execRestartCmd,
}

func init() {
	setupCommandPreRun(restartCmd, requireDaemonRunning)
	rootCmd.AddCommand(restartCmd)
}

func execRestartCmd(cmd *cobra.Command, args []string) {
	printWatches(client.Restart(socketPath(), args...))
}
