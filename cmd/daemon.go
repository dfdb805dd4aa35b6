package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/pkg/config"
	"github.com/wardenhq/warden/pkg/loader"
	"github.com/wardenhq/warden/pkg/logger"
	"github.com/wardenhq/warden/pkg/supervisor"
	"github.com/wardenhq/warden/pkg/utils"
	"github.com/wardenhq/warden/pkg/utils/constants"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the supervisor daemon",
	Run:   execDaemonCmd,
}

func init() {
	daemonCmd.PersistentFlags().BoolVarP(&config.ForegroundFlag, "foreground", "f", false, "Run the daemon in the foreground")

	daemonCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		rootCmd.PersistentPreRun(cmd, args)
		execDaemonPersistentPreRun()
	}
	rootCmd.AddCommand(daemonCmd)
}

func execDaemonPersistentPreRun() {
	if err := utils.CheckPerm(constants.WardenHome); err != nil {
		log.Fatal(err)
	}
}

func execDaemonCmd(cmd *cobra.Command, args []string) {
	if isDaemonRunning() {
		fmt.Println("warden daemon is already running.")
		return
	}

	cfg := config.GetConfig()

	watches, err := loader.ResolveAll(cfg)
	if err != nil {
		log.Fatal(err)
	}

	lg := logger.New(cfg.Log)
	sv := supervisor.NewSupervisor(lg, cfg.PidDir, cfg.Socket, watches)

	fmt.Printf("starting warden daemon, watching %d configured process(es)...\n", len(watches))

	if err := supervisor.RunDaemon(sv, cfg.PidFile, cfg.Socket, config.WorkDirFlag, config.ForegroundFlag); err != nil {
		log.Fatal(err)
	}
}
