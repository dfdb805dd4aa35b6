// Package logger builds the *zap.SugaredLogger every other package
// takes as a constructor argument. The shape of config.Log (level, file
// path, rotation size, age, backups, compression) is exactly the set of
// knobs lumberjack.Logger exposes, so New wires the two together
// directly rather than inventing its own rotation policy.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wardenhq/warden/pkg/config"
)

// New builds a logger from a config.Log block. Console output always
// goes to stderr so stdout stays free for CLI subcommands that print
// structured results; file output is added as a second core only when
// FileEnabled is set.
func New(cfg config.Log) *zap.SugaredLogger {
	level := parseLevel(cfg.Level)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			zapcore.Lock(os.Stderr),
			level,
		),
	}

	if cfg.FileEnabled && cfg.FilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    orDefault(cfg.FileSize, 10),
			MaxAge:     orDefault(cfg.MaxAge, 7),
			MaxBackups: orDefault(cfg.MaxBackups, 7),
			Compress:   cfg.FileCompress,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.AddSync(rotator),
			level,
		))
	}

	core := zapcore.NewTee(cores...)
	return zap.New(core, zap.AddCaller()).Sugar()
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// Nop returns a logger that discards everything, for tests that don't
// care about log output but still need to satisfy a *zap.SugaredLogger
// dependency.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
