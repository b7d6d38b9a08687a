/*
Package options contains a set of common CLI options and helper functions to use them.
*/
package options

import (
	"fmt"

	"github.com/nspcc-dev/neo-mpt/pkg/config"
	"github.com/nspcc-dev/neo-mpt/pkg/io"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is a set of flags specifying the configuration file and logging.
var Config = []cli.Flag{
	cli.StringFlag{
		Name:  "config-file",
		Usage: "path to the YAML configuration file, in-memory defaults are used if not set",
	},
	cli.BoolFlag{
		Name:  "debug, d",
		Usage: "enable debug logging (LOTS of output, overrides configuration)",
	},
}

// GetConfigFromContext looks at the config-file parameter and loads the
// configuration from it. The default configuration is returned when no file
// is given.
func GetConfigFromContext(ctx *cli.Context) (config.Config, error) {
	configFile := ctx.GlobalString("config-file")
	if configFile == "" {
		configFile = ctx.String("config-file")
	}
	if configFile == "" {
		return config.Default(), nil
	}
	return config.LoadFile(configFile)
}

// IsDebug returns whether debug logging was requested either globally or for
// the command.
func IsDebug(ctx *cli.Context) bool {
	return ctx.GlobalBool("debug") || ctx.Bool("debug")
}

// HandleLoggingParams reads logging parameters.
// If a user selected debug level -- function enables it.
// If logPath is configured -- function creates a dir and a file for logging.
func HandleLoggingParams(debug bool, cfg config.ApplicationConfiguration) (*zap.Logger, error) {
	var (
		level = zapcore.InfoLevel
		err   error
	)
	if len(cfg.LogLevel) > 0 {
		level, err = zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("log setting: %w", err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = "console"
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil

	if logPath := cfg.LogPath; logPath != "" {
		if err := io.MakeDirForFile(logPath, "logger"); err != nil {
			return nil, err
		}
		cc.OutputPaths = []string{logPath}
	}

	return cc.Build()
}
