package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/pkg/client"
)

var dumpPath string

var dumpCmd = &cobra.Command{
	Use:     "dump",
	Aliases: []string{"save"},
	Short:   "Persist the daemon's configured watches to a snapshot database",
	Run:     execDumpCmd,
}

func init() {
	dumpCmd.Flags().StringVar(&dumpPath, "path", "", "Snapshot database path (defaults to the daemon's own dump location)")
	setupCommandPreRun(dumpCmd, requireDaemonRunning)
	rootCmd.AddCommand(dumpCmd)
}

func execDumpCmd(cmd *cobra.Command, args []string) {
	client.Dump(socketPath(), dumpPath)
}
