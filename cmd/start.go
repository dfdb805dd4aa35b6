package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/pkg/client"
	"github.com/wardenhq/warden/pkg/config"
	"github.com/wardenhq/warden/pkg/loader"
	"github.com/wardenhq/warden/pkg/logger"
	"github.com/wardenhq/warden/pkg/supervisor"
)

var startCmd = &cobra.Command{
	Use:   "start [watch ...]",
	Short: "Start one or more watches, launching the daemon first if needed",
	Run:   execStartCmd,
}

func init() {
	startCmd.PersistentFlags().BoolVarP(&config.ForegroundFlag, "foreground", "f", false, "Run the daemon in the foreground")

	setupCommandPreRun(startCmd, func() {
		if config.ForegroundFlag {
			return
		}
		if isDaemonRunning() {
			return
		}
		if err := tryRunDaemon(); err != nil {
			log.Fatal(err)
		}
		time.Sleep(1 * time.Second)
	})

	rootCmd.AddCommand(startCmd)
}

func execStartCmd(cmd *cobra.Command, args []string) {
	if config.ForegroundFlag && !isDaemonRunning() {
		runForeground(args)
		return
	}

	printWatches(client.Start(socketPath(), args...))
}

// runForeground builds a Supervisor over the configured watches and
// runs it on this process rather than backgrounding, printing the
// result of the requested start once the control server is up.
func runForeground(names []string) {
	cfg := config.GetConfig()

	watches, err := loader.ResolveAll(cfg)
	if err != nil {
		log.Fatal(err)
	}

	lg := logger.New(cfg.Log)
	sv := supervisor.NewSupervisor(lg, cfg.PidDir, cfg.Socket, watches)

	go func() {
		time.Sleep(300 * time.Millisecond)
		printWatches(client.Start(cfg.Socket, names...))
	}()

	if err := supervisor.RunDaemon(sv, cfg.PidFile, cfg.Socket, config.WorkDirFlag, true); err != nil {
		fmt.Println("daemon exited:", err)
	}
}
