// Package main is the fcadc host tool: board tables, channel plans, a
// simulated bring-up and the live telemetry monitor.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"fcadc/host/config"
)

const (
	// Flags.
	flagConfig    = "config"
	flagDebug     = "debug"
	flagBoard     = "board"
	flagRSSI      = "rssi"
	flagCurrent   = "current"
	flagExternal1 = "external1"
	flagRounds    = "rounds"
	flagTrace     = "trace"
	flagDevice    = "device"
	flagBaud      = "baud"
	flagFrames    = "frames"

	defaultConfigFile = "fcadc.yaml"
)

// env carries what Before prepared to every action
type env struct {
	cfg    *config.Config
	logger *zap.SugaredLogger
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	e := &env{}

	featureFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  flagBoard,
			Usage: "board `NAME` (see the boards command)",
		},
		&cli.BoolFlag{
			Name:  flagRSSI,
			Usage: "enable the RSSI input",
		},
		&cli.BoolFlag{
			Name:  flagCurrent,
			Usage: "enable the current meter input",
		},
		&cli.BoolFlag{
			Name:  flagExternal1,
			Usage: "enable the external1 input",
		},
	}

	return &cli.App{
		Name:      "fcadc",
		Usage:     "flight controller analog capture tools",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Value:   defaultConfigFile,
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String(flagConfig))
			if err != nil {
				return err
			}
			e.cfg = cfg

			logger, err := newLogger(c.Bool(flagDebug))
			if err != nil {
				return errors.Wrap(err, "create logger")
			}
			e.logger = logger
			return nil
		},
		After: func(c *cli.Context) error {
			if e.logger != nil {
				//nolint:errcheck
				e.logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "boards",
				Usage:  "list the known boards and their analog wiring",
				Action: e.boardsAction,
			},
			{
				Name:   "plan",
				Usage:  "show the channel set a board and feature selection resolve to",
				Flags:  featureFlags,
				Action: e.planAction,
			},
			{
				Name:  "simulate",
				Usage: "run the bring-up against the simulated converter and print samples",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  flagRounds,
						Usage: "number of scan rounds to run",
					},
					&cli.BoolFlag{
						Name:  flagTrace,
						Usage: "dump the bring-up trace ring",
					},
				}, featureFlags...),
				Action: e.simulateAction,
			},
			{
				Name:  "monitor",
				Usage: "print sample snapshots streamed by a running board",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagDevice,
						Usage: "serial `DEVICE`",
					},
					&cli.IntFlag{
						Name:  flagBaud,
						Usage: "baud rate (ignored for USB CDC)",
					},
					&cli.IntFlag{
						Name:  flagFrames,
						Usage: "stop after `N` frames, 0 runs until interrupted",
					},
					&cli.StringFlag{
						Name:  flagBoard,
						Usage: "warn if the firmware reports a different board",
					},
				},
				Action: e.monitorAction,
			},
		},
	}
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if !debug {
		zcfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zcfg.DisableStacktrace = true
	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
