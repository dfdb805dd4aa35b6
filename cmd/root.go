// Package cmd implements the warden command-line interface: a thin
// presentation layer over pkg/client, which itself talks to the
// running daemon over the control socket. No subcommand touches
// pkg/supervisor's state directly except daemon.go and start.go's
// foreground path, which construct and run a Supervisor in-process.
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/pkg/config"
	"github.com/wardenhq/warden/pkg/utils"
	"github.com/wardenhq/warden/pkg/utils/constants"
)

var (
	cwd               string
	showVersion       bool
	defaultConfigFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           utils.RuntimeModuleName,
	Short:         utils.RuntimeModuleName + " process supervisor cli",
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(utils.RuntimeModuleName, "0.1.0")
			os.Exit(0)
		}
		_ = cmd.Usage()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	var err error

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cwd, err = os.Getwd()
	if err != nil {
		log.Fatal(err)
		os.Exit(1)
	}

	defaultConfigFile = fmt.Sprintf("%s/%s.yml", cwd, constants.DefaultDaemonName)

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Print version and exit")
	rootCmd.PersistentFlags().StringVarP(&config.LogLevelFlag, "loglevel", "l", constants.DefaultLogLevel, "Set log level")
	rootCmd.PersistentFlags().StringVarP(&config.WorkDirFlag, "workdir", "w", cwd, "The path to the work directory")
	rootCmd.PersistentFlags().StringVarP(&config.ConfigFileFlag, "config", "c", defaultConfigFile, "The path to the watch configuration file")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		execRootPersistentPreRun()
	}
}

func execRootPersistentPreRun() {
	utils.InitEnv()
	config.SetConfig(config.ConfigFileFlag)

	if cfg := config.GetConfig(); cfg != nil && config.LogLevelFlag != "" {
		cfg.Log.Level = config.LogLevelFlag
	}
}
