// Package bell gives audible feedback for rejected line edits
package bell

import "sync/atomic"

// Bell rings once per call and never blocks the caller
type Bell interface {
	Ring()
}

// Beeper is a terminal that can sound its own bell
type Beeper interface {
	Beep() error
}

type off struct{}

func (off) Ring() {}

// Off is a silent bell
var Off Bell = off{}

// terminalBell writes BEL through a terminal
type terminalBell struct {
	b      Beeper
	failed atomic.Bool
}

// Terminal rings through b. After the first write error it goes silent.
func Terminal(b Beeper) Bell {
	return &terminalBell{b: b}
}

func (t *terminalBell) Ring() {
	if t.failed.Load() {
		return
	}
	if err := t.b.Beep(); err != nil {
		t.failed.Store(true)
	}
}
