package console

import (
	"go.uber.org/zap"

	"github.com/lixenwraith/syncterm/terminal"
)

// Bell gives audible feedback for keystrokes that cannot be applied
type Bell interface {
	Ring()
}

// Option configures a Console
type Option func(*Console)

// WithLogger sets the debug logger. The logger may itself write through
// this console's Writer; the console never logs while holding its lock.
func WithLogger(log *zap.Logger) Option {
	return func(c *Console) {
		if log != nil {
			c.log = log
		}
	}
}

// WithPrompt sets the initial prompt; empty values are ignored
func WithPrompt(p string) Option {
	return func(c *Console) {
		if p != "" {
			c.prompt = p
		}
	}
}

// WithBell rings b on rejected edits (Backspace at start, Delete at end,
// arrows past either end, Enter on an empty line when empty lines are refused)
func WithBell(b Bell) Option {
	return func(c *Console) {
		c.bell = b
	}
}

// WithAllowEmptyLine lets Enter submit an empty line; by default it is ignored
func WithAllowEmptyLine(allow bool) Option {
	return func(c *Console) {
		c.allowEmpty = allow
	}
}

// WithInterruptKeys makes the listed control keys abandon the current line,
// returning ErrInterrupted from ReadLine
func WithInterruptKeys(keys ...terminal.Key) Option {
	return func(c *Console) {
		for _, k := range keys {
			c.interrupt[k] = struct{}{}
		}
	}
}
