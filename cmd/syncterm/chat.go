package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/syncterm/console"
	"github.com/lixenwraith/syncterm/terminal"
)

var writerColors = []terminal.Color{
	terminal.Cyan, terminal.Magenta, terminal.Yellow, terminal.Blue, terminal.DarkGreen, terminal.DarkRed,
}

var chatter = []string{
	"build finished",
	"cache warmed",
	"heartbeat ok",
	"retrying upstream",
	"checkpoint written",
	"queue drained",
	"peer joined",
	"lease renewed",
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	var writers int
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Type while background writers print above the prompt",
		Long: `chat starts several writer goroutines that print status lines at
jittered intervals while you edit a line. Entered lines are echoed back.
Type /quit or press an interrupt key (Ctrl+C, Ctrl+D by default) to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if writers < 0 {
				return fmt.Errorf("writers must not be negative")
			}
			if interval <= 0 {
				return fmt.Errorf("interval must be positive")
			}
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGHUP)
			defer stop()

			runErr := runChat(ctx, a, writers, interval)
			if err := a.close(); err != nil && runErr == nil {
				runErr = err
			}
			return runErr
		},
	}

	cmd.Flags().IntVarP(&writers, "writers", "w", 3, "number of concurrent writer goroutines")
	cmd.Flags().DurationVarP(&interval, "interval", "i", 1500*time.Millisecond, "mean delay between lines per writer")
	return cmd
}

// runChat reads lines until the user quits; writers stop before it returns.
// On a signal the writers stop before the hub tears down the terminal.
func runChat(ctx context.Context, a *app, writers int, interval time.Duration) error {
	wctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	stopWriters := func() {
		cancel()
		wg.Wait()
	}

	for i := 0; i < writers; i++ {
		w := newChatWriter(a.console, writerColors[i%len(writerColors)], interval)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer recoverAndExit("CHAT WRITER")
			w.run(wctx)
		}()
	}

	// A signal unblocks the reader by closing terminal input
	done := make(chan struct{})
	var watcher sync.WaitGroup
	watcher.Add(1)
	go func() {
		defer watcher.Done()
		select {
		case <-ctx.Done():
			stopWriters()
			a.hub.StopAll()
		case <-done:
		}
	}()
	defer func() {
		close(done)
		watcher.Wait()
		stopWriters()
	}()

	a.log.Info("chat started", zap.Int("writers", writers), zap.Duration("interval", interval))
	for {
		line, err := a.console.ReadLine()
		switch {
		case errors.Is(err, console.ErrInterrupted), errors.Is(err, terminal.ErrInputClosed):
			a.log.Info("chat finished")
			return nil
		case err != nil:
			return err
		}

		if strings.TrimSpace(line) == "/quit" {
			a.log.Info("chat finished")
			return nil
		}
		if err := a.console.WriteSegments(
			console.Colored("you", terminal.Green),
			console.Plain(": "),
			console.Plain(line),
		); err != nil {
			return err
		}
	}
}

// chatWriter prints numbered status lines tagged with its id
type chatWriter struct {
	id       string
	color    terminal.Color
	interval time.Duration
	con      *console.Console
	rng      *rand.Rand
}

func newChatWriter(con *console.Console, color terminal.Color, interval time.Duration) *chatWriter {
	id := uuid.New()
	return &chatWriter{
		id:       id.String()[:8],
		color:    color,
		interval: interval,
		con:      con,
		rng:      rand.New(rand.NewSource(int64(id.ID()))),
	}
}

// next returns a delay uniformly jittered within ±50% of the interval
func (w *chatWriter) next() time.Duration {
	half := int64(w.interval / 2)
	return time.Duration(half + w.rng.Int63n(2*half+1))
}

func (w *chatWriter) line(n int) []console.Text {
	return []console.Text{
		console.Colored("["+w.id+"]", w.color),
		console.Plain(fmt.Sprintf(" #%d %s", n, chatter[w.rng.Intn(len(chatter))])),
	}
}

func (w *chatWriter) run(ctx context.Context) {
	timer := time.NewTimer(w.next())
	defer timer.Stop()

	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if err := w.con.WriteText(w.line(n)); err != nil {
			return
		}
		timer.Reset(w.next())
	}
}
