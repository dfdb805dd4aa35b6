package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/wardenhq/warden/pkg/utils/constants"

	"github.com/spf13/viper"
)

var config *Config

// Package-level flag targets bound by cmd's flags (root.go's persistent
// flags, plus --foreground on the daemon and start subcommands).
// Kept here rather than in cmd/ so both the CLI layer and any future
// programmatic caller share the same names.
var (
	ForegroundFlag bool
	WorkDirFlag    string
	ConfigFileFlag string
	LogLevelFlag   string
)

// configViperMutex guards mutation of viper's global state during load,
// since SetConfig may run concurrently with tests exercising it against
// distinct config files.
var configViperMutex sync.Mutex

type Config struct {
	Daemonize bool              `yaml:"daemonize" mapstructure:"daemonize"`
	PidFile   string            `yaml:"pidfile" mapstructure:"pidfile"`
	PidDir    string            `yaml:"pid_dir,omitempty" mapstructure:"pid_dir,omitempty"`
	Socket    string            `yaml:"socket" mapstructure:"socket"`
	Log       Log               `yaml:"log" mapstructure:"log"`
	Env       map[string]string `yaml:"env,omitempty" mapstructure:"env,omitempty"`
	Watches   []Watch           `yaml:"watches,omitempty" mapstructure:"watches,omitempty"`
}

type Log struct {
	Level        string `yaml:"level,omitempty" mapstructure:"level,omitempty"`
	FileEnabled  bool   `yaml:"file_enabled" mapstructure:"file_enabled"`
	FilePath     string `yaml:"file_path,omitempty" mapstructure:"file_path,omitempty"`
	FileSize     int    `yaml:"file_size,omitempty" mapstructure:"file_size,omitempty"`
	FileCompress bool   `yaml:"file_compress,omitempty" mapstructure:"file_compress,omitempty"`
	MaxAge       int    `yaml:"max_age,omitempty" mapstructure:"max_age,omitempty"`
	MaxBackups   int    `yaml:"max_backups,omitempty" mapstructure:"max_backups,omitempty"`
}

// Watch is the on-disk shape of one supervised watch entry. It carries
// nothing the state machine core doesn't need: privilege resolution
// (username to uid/gid, group membership) happens in pkg/loader at load
// time, not inside the supervisor package, per the boundary the core
// draws around itself.
type Watch struct {
	Name         string            `yaml:"name" mapstructure:"name"`
	Start        []string          `yaml:"start" mapstructure:"start"`
	Dir          string            `yaml:"dir,omitempty" mapstructure:"dir,omitempty"`
	User         string            `yaml:"user,omitempty" mapstructure:"user,omitempty"`
	Group        string            `yaml:"group,omitempty" mapstructure:"group,omitempty"`
	Env          map[string]string `yaml:"env,omitempty" mapstructure:"env,omitempty"`
	StopSignal   string            `yaml:"stop_signal,omitempty" mapstructure:"stop_signal,omitempty"`
	StartTimeout time.Duration     `yaml:"start_timeout,omitempty" mapstructure:"start_timeout,omitempty"`
	OutLog       string            `yaml:"out_log,omitempty" mapstructure:"out_log,omitempty"`
	ErrLog       string            `yaml:"err_log,omitempty" mapstructure:"err_log,omitempty"`
}

func setDefault() {
	viper.SetDefault("daemonize", true)
	viper.SetDefault("pidfile", constants.DaemonPidFilePath)
	viper.SetDefault("socket", constants.DaemonSockFilePath)
	viper.SetDefault("log", map[string]any{
		"Level":        constants.DefaultLogLevel,
		"FilePath":     constants.DaemonLogFilePath,
		"FileEnabled":  true,
		"FileCompress": false,
		"FileSize":     10,
		"MaxAge":       7,
		"MaxBackups":   7,
	})
}

func GetConfig() *Config {
	return config
}

func SetConfig(configFile string) {
	configViperMutex.Lock()
	defer configViperMutex.Unlock()

	_, err := os.Stat(configFile)
	if errors.Is(err, os.ErrNotExist) {
		cfgName := fmt.Sprintf("%s.yml", constants.DefaultDaemonName)

		viper.SetConfigName(cfgName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("etc")
		viper.AddConfigPath("../etc")
		viper.AddConfigPath(constants.WardenHome)
	} else if err != nil {
		log.Fatal(err)
	} else {
		viper.SetConfigFile(configFile)
	}

	viper.SetEnvPrefix("WARDEN")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefault()

	err = viper.ReadInConfig()
	if err != nil && !errors.As(err, &viper.ConfigFileNotFoundError{}) {
		log.Fatalf("Error getting config file, %v", err)
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		fmt.Println("Unable to decode into struct, ", err)
	}

	if config != nil && config.PidDir == "" {
		config.PidDir = DeterminePidDir()
	}
}

// DeterminePidDir walks constants.PidDirCandidates in order and returns
// the first one for which os.MkdirAll succeeds, which includes a
// directory that already exists; writability is not checked. If none
// succeeds it returns the last candidate anyway.
func DeterminePidDir() string {
	for _, dir := range constants.PidDirCandidates {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err == nil {
			return dir
		}
	}
	return constants.PidDirCandidates[len(constants.PidDirCandidates)-1]
}
