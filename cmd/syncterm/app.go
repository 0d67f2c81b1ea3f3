package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/lixenwraith/syncterm/bell"
	"github.com/lixenwraith/syncterm/config"
	"github.com/lixenwraith/syncterm/console"
	"github.com/lixenwraith/syncterm/logging"
	"github.com/lixenwraith/syncterm/service"
	"github.com/lixenwraith/syncterm/tcellterm"
	"github.com/lixenwraith/syncterm/terminal"
)

// terminalService is either the ANSI or the tcell terminal service
type terminalService interface {
	service.Service
	bell.Beeper
	Terminal() terminal.Driver
}

// app is a running terminal with its console, bell and logger
type app struct {
	cfg     *config.Config
	hub     *service.Hub
	driver  terminal.Driver
	console *console.Console
	log     *zap.Logger
}

// writerFunc adapts a function to io.Writer
type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

// newApp starts the services named by cfg and builds the console on top.
// The caller must call close.
func newApp(cfg *config.Config) (*app, error) {
	var term terminalService
	switch cfg.Driver {
	case config.DriverTcell:
		term = tcellterm.NewService()
	default:
		term = terminal.NewService()
	}
	return startApp(cfg, term)
}

// startApp registers term as the "terminal" service and starts the hub
func startApp(cfg *config.Config, term terminalService) (*app, error) {
	hub := service.NewHub()
	if err := hub.Register(term, cfg.ColorModeValue()); err != nil {
		return nil, err
	}

	bellSvc := bell.NewService()
	if err := hub.Register(bellSvc, cfg.Bell, term, cfg.BellTone()); err != nil {
		return nil, err
	}

	if err := hub.InitAll(); err != nil {
		return nil, err
	}
	if err := hub.StartAll(); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, hub: hub}
	a.driver = service.MustGet[terminalService](hub, "terminal").Terminal()

	log, err := a.newLogger()
	if err != nil {
		hub.StopAll()
		return nil, fmt.Errorf("logger: %w", err)
	}
	a.log = log

	keys, err := cfg.Interrupts()
	if err != nil {
		hub.StopAll()
		return nil, err
	}
	a.console = console.New(a.driver,
		console.WithPrompt(cfg.Prompt),
		console.WithLogger(log.Named("console")),
		console.WithBell(bellSvc),
		console.WithAllowEmptyLine(cfg.AllowEmptyLine),
		console.WithInterruptKeys(keys...),
	)

	if bellSvc.IsDisabled() {
		log.Warn("no audio device, tone bell falls back to terminal bell")
	}
	log.Debug("services started", zap.Strings("services", hub.Names()), zap.String("driver", cfg.Driver))
	return a, nil
}

// newLogger logs to the configured file, or above the prompt when none is set
func (a *app) newLogger() (*zap.Logger, error) {
	lc := logging.Config{Level: a.cfg.Log.Level, Development: a.cfg.Log.Development}
	if a.cfg.Log.File != "" {
		lc.OutputPaths = []string{a.cfg.Log.File}
		return logging.New(lc)
	}
	// The console is created after the logger; entries written before that are dropped
	var w io.Writer = writerFunc(func(p []byte) (int, error) {
		if a.console == nil {
			return len(p), nil
		}
		return a.console.Writer().Write(p)
	})
	return logging.NewForWriter(lc, w)
}

// close stops every service, restoring the terminal
func (a *app) close() error {
	a.log.Sync()
	var outErr error
	if ansi, ok := a.driver.(*terminal.ANSI); ok {
		outErr = ansi.Err()
	}
	if err := a.hub.StopAll(); err != nil {
		return err
	}
	if outErr != nil {
		return fmt.Errorf("terminal output: %w", outErr)
	}
	return nil
}
