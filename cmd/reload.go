package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/pkg/client"
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Ask the daemon to acknowledge a configuration reload request",
	Run:   execReloadCmd,
}

func init() {
	setupCommandPreRun(reloadCmd, requireDaemonRunning)
	rootCmd.AddCommand(reloadCmd)
}

func execReloadCmd(cmd *cobra.Command, args []string) {
	client.Reload(socketPath())
}
