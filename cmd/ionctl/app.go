package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/sungwon/ion-notify/internal/config"
	"github.com/sungwon/ion-notify/internal/logger"
	"github.com/sungwon/ion-notify/internal/ops"
)

// app holds what every subcommand shares. Configuration is loaded on first
// use so that --config is honored.
type app struct {
	configDir string
	verbose   bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	newRunner func() ops.Runner
	openStore func(config.OpsConfig) ops.OpenStore

	cfg *config.Config
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{
		configDir: "config",
		in:        in,
		out:       out,
		errOut:    errOut,
		newRunner: func() ops.Runner { return ops.NewExecRunner() },
		openStore: ops.RedisOpener,
	}
}

func (a *app) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := config.Load(a.configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	return cfg, nil
}

func (a *app) logger() zerolog.Logger {
	level := "warn"
	if a.verbose {
		level = "debug"
	}
	return logger.NewWithWriter(a.errOut, level)
}

func (a *app) ops() (*ops.Ops, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	return ops.New(
		cfg.Ops,
		a.newRunner(),
		ops.NewPrompter(a.in, a.out),
		a.openStore(cfg.Ops),
		a.out,
		a.logger(),
	), nil
}
