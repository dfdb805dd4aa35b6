package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/pkg/client"
)

var runCmd = &cobra.Command{
	Use:                "run -- <command> [args ...]",
	Short:              "Register and start an ad hoc command as a one-off watch",
	Run:                execRunCmd,
	SilenceUsage:       true,
	DisableFlagParsing: true,
}

func init() {
	setupCommandPreRun(runCmd, requireDaemonRunning)
	rootCmd.AddCommand(runCmd)
}

func execRunCmd(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		_ = cmd.Usage()
		return
	}
	printWatches(client.Run(socketPath(), args))
}
