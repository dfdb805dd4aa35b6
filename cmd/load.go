package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/pkg/client"
)

var loadPath string

var loadCmd = &cobra.Command{
	Use:     "load",
	Aliases: []string{"restore"},
	Short:   "Register every watch found in a snapshot database that isn't already registered",
	Run:     execLoadCmd,
}

func init() {
	loadCmd.Flags().StringVar(&loadPath, "path", "", "Snapshot database path (defaults to the daemon's own dump location)")
	setupCommandPreRun(loadCmd, requireDaemonRunning)
	rootCmd.AddCommand(loadCmd)
}

func execLoadCmd(cmd *cobra.Command, args []string) {
	client.Load(socketPath(), loadPath)
}
