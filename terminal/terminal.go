package terminal

import (
	"bufio"
	"io"
	"os"
	"sync"
	"unicode"
)

// ANSI implements Driver on a raw-mode tty through a Backend.
//
// The cursor position is tracked locally (shadow cursor) rather than queried
// from the terminal. Rows are counted from the row the driver was opened on.
type ANSI struct {
	backend   Backend
	colorMode ColorMode

	input  *inputReader
	out    *bufio.Writer
	closed chan struct{}

	mu          sync.Mutex
	initialized bool
	finalized   bool

	width    int
	col, row int
	fg, bg   Color
}

// backendWriter adapts Backend to io.Writer for buffered output
type backendWriter struct {
	b Backend
}

func (w backendWriter) Write(p []byte) (int, error) {
	if err := w.b.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// NewANSI creates a driver over backend; call Init before use
func NewANSI(backend Backend, colorMode ColorMode) *ANSI {
	return &ANSI{
		backend:   backend,
		colorMode: colorMode,
		out:       bufio.NewWriterSize(backendWriter{b: backend}, 4096),
		closed:    make(chan struct{}),
		fg:        ColorDefault,
		bg:        ColorDefault,
	}
}

// Init enters raw mode, samples the width and starts the input reader
func (t *ANSI) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}

	if err := t.backend.Init(); err != nil {
		return err
	}

	t.width, _ = t.backend.Size()
	if t.width < 1 {
		t.width = 1
	}

	// Known state: autowrap on, default colors, column 0
	t.out.Write(csiAutoWrapOn)
	t.out.Write(csiSGR0)
	t.out.WriteByte('\r')
	t.out.Flush()

	t.input = newInputReader(t.backend)
	t.input.start()

	t.initialized = true
	return nil
}

// Fini restores terminal state. Safe to call multiple times
func (t *ANSI) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return
	}
	t.finalized = true
	close(t.closed)

	if t.input != nil {
		t.input.stop()
	}

	t.out.Write(csiSGR0)
	t.out.Write(csiCursorShow)
	if t.col != 0 {
		t.out.Write(crlf)
	}
	t.out.Flush()

	t.backend.Fini()
}

// Close implements io.Closer
func (t *ANSI) Close() error {
	t.Fini()
	return nil
}

// Err returns the first output error; output is dropped after it
func (t *ANSI) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	// bufio.Writer keeps its first error and refuses further writes
	return t.out.Flush()
}

// ColorMode returns the configured color capability
func (t *ANSI) ColorMode() ColorMode {
	return t.colorMode
}

func (t *ANSI) WriteText(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, r := range s {
		t.writeRune(r)
	}
	t.out.Flush()
}

func (t *ANSI) WriteRune(r rune) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.writeRune(r)
	t.out.Flush()
}

// writeRune emits one rune and advances the shadow cursor, wrapping at width
func (t *ANSI) writeRune(r rune) {
	switch {
	case r == '\n':
		t.out.Write(crlf)
		t.col = 0
		t.row++
	case r == '\r':
		t.out.WriteByte('\r')
		t.col = 0
	case r == '\t':
		for n := 8 - t.col%8; n > 0; n-- {
			t.writeRune(' ')
		}
	case unicode.IsControl(r):
		// Other control characters would desync the shadow cursor
	default:
		t.out.WriteRune(r)
		t.col++
		if t.col >= t.width {
			t.out.Write(crlf)
			t.col = 0
			t.row++
		}
	}
}

func (t *ANSI) SetForeground(c Color) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.fg = c
	writeColor(t.out, c, t.colorMode, false)
	t.out.Flush()
}

func (t *ANSI) SetBackground(c Color) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.bg = c
	writeColor(t.out, c, t.colorMode, true)
	t.out.Flush()
}

func (t *ANSI) Foreground() Color {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fg
}

func (t *ANSI) Background() Color {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bg
}

// ReadKey blocks until next key event; the driver lock is not held while waiting
func (t *ANSI) ReadKey() (KeyInfo, error) {
	t.mu.Lock()
	input := t.input
	t.mu.Unlock()
	if input == nil {
		return KeyInfo{}, ErrInputClosed
	}

	for {
		select {
		case <-t.closed:
			return KeyInfo{}, ErrInputClosed
		case ev := <-input.events():
			switch ev.Type {
			case EventClosed:
				return KeyInfo{}, ErrInputClosed
			case EventError:
				return KeyInfo{}, ev.Err
			}
			if ev.Key == KeyNone {
				continue
			}
			return keyInfoFromEvent(ev), nil
		}
	}
}

func (t *ANSI) CursorColumn() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.col
}

func (t *ANSI) CursorRow() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.row
}

// SetCursorPosition moves with relative row motion plus absolute column (CHA).
// Rows above the origin are clamped to it.
func (t *ANSI) SetCursorPosition(col, row int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if col < 0 {
		col = 0
	}
	if col >= t.width {
		col = t.width - 1
	}
	if row < 0 {
		row = 0
	}

	writeCursorVertical(t.out, row-t.row)
	writeCursorColumn(t.out, col)
	t.out.Flush()

	t.col = col
	t.row = row
}

func (t *ANSI) BufferWidth() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width
}

// Beep rings the terminal bell; BEL does not move the cursor
func (t *ANSI) Beep() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.out.Write(bel)
	return t.out.Flush()
}

// EmergencyReset attempts to restore terminal to sane state
// Call this from panic recovery if Fini() cannot be called normally
func EmergencyReset(w io.Writer) {
	w.Write(csiCursorShow)
	w.Write(csiSGR0)
	w.Write(csiAutoWrapOn)
	w.Write(crlf)

	// Flush if it's a file
	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore termios
	resetTerminalMode()
}
