// Command manage runs the veloxext management commands.
//
//	manage sqlcreate --database default
//	manage autocomplete --addr :8000
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/syssam/veloxext/settings"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds what the subcommands share once the root flags are parsed.
type app struct {
	stdout io.Writer
	stderr io.Writer
	log    *zap.Logger
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	a := &app{stdout: stdout, stderr: stderr, log: zap.NewNop()}
	return &cli.Command{
		Name:      "manage",
		Usage:     "veloxext management commands",
		Writer:    stdout,
		ErrWriter: stderr,
		// Errors are printed by main, never by os.Exit inside the library.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "settings",
				Usage:   "path to the settings file",
				Value:   settings.DefaultFile,
				Sources: cli.EnvVars("VELOXEXT_SETTINGS"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			a.log = newLogger(stderr, cmd.Bool("debug"))
			return ctx, nil
		},
		After: func(context.Context, *cli.Command) error {
			_ = a.log.Sync()
			return nil
		},
		Commands: []*cli.Command{
			a.sqlcreateCommand(),
			a.autocompleteCommand(),
		},
	}
}

// newLogger returns a development logger writing to w, without timestamps.
func newLogger(w io.Writer, debug bool) *zap.Logger {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.TimeKey = ""
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(config.EncoderConfig), zapcore.AddSync(w), config.Level)
	return zap.New(core)
}

func (a *app) loadSettings(cmd *cli.Command) (*settings.Settings, error) {
	path := cmd.String("settings")
	s, err := settings.Load(path)
	if err != nil {
		return nil, err
	}
	a.log.Debug("settings loaded", zap.String("path", path), zap.Strings("databases", s.Aliases()))
	return s, nil
}
