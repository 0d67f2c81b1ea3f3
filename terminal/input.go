package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
	"time"
	"unicode/utf8"
)

// EventType distinguishes input event categories
type EventType uint8

const (
	EventKey    EventType = iota
	EventError            // Read error
	EventClosed           // Input closed
)

// Event represents a parsed terminal input event
type Event struct {
	Type      EventType
	Key       Key
	Rune      rune
	Modifiers Modifier
	Err       error // For EventError
}

// inputReader turns raw backend bytes into key events on a channel
type inputReader struct {
	backend Backend
	eventCh chan Event
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool

	// Persistent buffer for stream assembly so partial UTF-8 and escape
	// sequences split across reads are completed on the next read
	buf []byte
}

// escapeTimeout is the duration to wait after ESC to distinguish
// standalone ESC from escape sequence start
const escapeTimeout = 50 * time.Millisecond

func newInputReader(backend Backend) *inputReader {
	return &inputReader{
		backend: backend,
		eventCh: make(chan Event, 256),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		buf:     make([]byte, 0, 256),
	}
}

// start begins reading input in a goroutine
func (r *inputReader) start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	go r.readLoop()
}

// stop signals the reader to stop
func (r *inputReader) stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	close(r.stopCh)
	// Don't block forever if the backend read is stuck
	select {
	case <-r.doneCh:
	case <-time.After(escapeTimeout * 2):
	}
}

func (r *inputReader) events() <-chan Event {
	return r.eventCh
}

func (r *inputReader) readLoop() {
	defer close(r.doneCh)

	defer func() {
		if rec := recover(); rec != nil {
			EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\r\n\x1b[31mINPUT READER CRASHED: %v\x1b[0m\r\n", rec)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	for {
		data, err := r.backend.Read(r.stopCh)
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.flushEscape()
				r.sendEvent(Event{Type: EventClosed})
				return
			}
			r.sendEvent(Event{Type: EventError, Err: err})
			return
		}

		if len(data) == 0 {
			// Poll timeout: a lone ESC left in the buffer is a real Escape key
			r.flushEscape()
			select {
			case <-r.stopCh:
				r.sendEvent(Event{Type: EventClosed})
				return
			default:
				continue
			}
		}

		r.buf = append(r.buf, data...)

		consumed := r.parseInput(r.buf)

		if consumed > 0 {
			if consumed >= len(r.buf) {
				r.buf = r.buf[:0]
			} else {
				copy(r.buf, r.buf[consumed:])
				r.buf = r.buf[:len(r.buf)-consumed]
			}
		}
	}
}

func (r *inputReader) flushEscape() {
	if len(r.buf) == 1 && r.buf[0] == 0x1b {
		r.sendEvent(Event{Type: EventKey, Key: KeyEscape})
		r.buf = r.buf[:0]
	}
}

// parseInput parses raw bytes into events and returns bytes consumed (stop on incomplete sequence)
func (r *inputReader) parseInput(data []byte) int {
	i := 0
	n := len(data)

	for i < n {
		b := data[i]

		// Fast path: printable ASCII
		if b >= 0x20 && b < 0x7f {
			r.sendEvent(Event{Type: EventKey, Key: KeyRune, Rune: rune(b)})
			i++
			continue
		}

		if b == 0x1b {
			// Need at least 2 bytes to determine sequence type
			if i+1 >= n {
				return i
			}

			consumed, ev := parseEscape(data[i:])
			if consumed == 0 {
				return i
			}

			// Unknown sequences are swallowed
			if ev.Key != KeyNone {
				r.sendEvent(ev)
			}
			i += consumed
			continue
		}

		if b < 0x20 {
			r.sendEvent(parseControl(b))
			i++
			continue
		}

		// DEL
		if b == 0x7f {
			r.sendEvent(Event{Type: EventKey, Key: KeyBackspace})
			i++
			continue
		}

		// UTF-8 multibyte
		if !utf8.FullRune(data[i:]) {
			return i
		}
		rn, size := utf8.DecodeRune(data[i:])
		if rn != utf8.RuneError {
			r.sendEvent(Event{Type: EventKey, Key: KeyRune, Rune: rn})
		}
		i += size
	}
	return i
}

// parseEscape attempts to parse an escape sequence, returns 0 on incomplete
func parseEscape(data []byte) (int, Event) {
	if len(data) < 2 {
		return 0, Event{}
	}

	// ESC ESC -> Alt+Escape
	if data[1] == 0x1b {
		return 2, Event{Type: EventKey, Key: KeyEscape, Modifiers: ModAlt}
	}

	if data[1] == '[' {
		return parseCSI(data)
	}
	if data[1] == 'O' {
		return parseSS3(data)
	}

	// Alt+Control character
	if data[1] < 0x20 {
		ev := parseControl(data[1])
		ev.Modifiers |= ModAlt
		return 2, ev
	}

	// Alt+printable
	if data[1] >= 0x20 && data[1] < 0x7f {
		return 2, Event{Type: EventKey, Key: KeyRune, Rune: rune(data[1]), Modifiers: ModAlt}
	}

	// Alt+DEL or a stray high byte: treat ESC as standalone
	return 1, Event{Type: EventKey, Key: KeyEscape}
}

// parseCSI parses CSI sequence without allocation
func parseCSI(data []byte) (int, Event) {
	if len(data) < 3 {
		return 0, Event{}
	}

	end := 2
	maxScan := len(data)
	if maxScan > 16 {
		maxScan = 16
	}

	terminated := false
	for end < maxScan {
		b := data[end]
		end++
		if (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '~' {
			terminated = true
			break
		}
		if b < 0x20 || b > 0x7e {
			// Malformed, drop the introducer
			return 2, Event{Type: EventKey, Key: KeyNone}
		}
	}

	if !terminated {
		if len(data) >= 16 {
			// Overlong garbage, drop what was scanned
			return end, Event{Type: EventKey, Key: KeyNone}
		}
		return 0, Event{}
	}

	if key, mod, ok := lookupCSI(data[2:end]); ok {
		return end, Event{Type: EventKey, Key: key, Modifiers: mod}
	}

	return end, Event{Type: EventKey, Key: KeyNone}
}

// parseSS3 parses SS3 sequence, returns length even for unknown sequences
func parseSS3(data []byte) (int, Event) {
	if len(data) < 3 {
		return 0, Event{}
	}
	if key, mod, ok := lookupSS3(data[2:3]); ok {
		return 3, Event{Type: EventKey, Key: key, Modifiers: mod}
	}
	return 3, Event{Type: EventKey, Key: KeyNone}
}

// parseControl maps control characters to keys
func parseControl(b byte) Event {
	switch b {
	case 0x00:
		return Event{Type: EventKey, Key: KeyCtrlSpace}
	case 0x08: // Ctrl+H
		return Event{Type: EventKey, Key: KeyBackspace}
	case 0x09:
		return Event{Type: EventKey, Key: KeyTab}
	case 0x0a, 0x0d: // LF, CR
		return Event{Type: EventKey, Key: KeyEnter}
	case 0x1b:
		return Event{Type: EventKey, Key: KeyEscape}
	case 0x1c:
		return Event{Type: EventKey, Key: KeyCtrlBackslash}
	case 0x1d:
		return Event{Type: EventKey, Key: KeyCtrlBracketRight}
	case 0x1e:
		return Event{Type: EventKey, Key: KeyCtrlCaret}
	case 0x1f:
		return Event{Type: EventKey, Key: KeyCtrlUnderscore}
	}
	if k, ok := ctrlLetters[b]; ok {
		return Event{Type: EventKey, Key: k}
	}
	return Event{Type: EventKey, Key: KeyNone}
}

var ctrlLetters = map[byte]Key{
	0x01: KeyCtrlA, 0x02: KeyCtrlB, 0x03: KeyCtrlC, 0x04: KeyCtrlD,
	0x05: KeyCtrlE, 0x06: KeyCtrlF, 0x07: KeyCtrlG, 0x0b: KeyCtrlK,
	0x0c: KeyCtrlL, 0x0e: KeyCtrlN, 0x0f: KeyCtrlO, 0x10: KeyCtrlP,
	0x11: KeyCtrlQ, 0x12: KeyCtrlR, 0x13: KeyCtrlS, 0x14: KeyCtrlT,
	0x15: KeyCtrlU, 0x16: KeyCtrlV, 0x17: KeyCtrlW, 0x18: KeyCtrlX,
	0x19: KeyCtrlY, 0x1a: KeyCtrlZ,
}

// sendEvent blocks until the consumer takes the event or the reader stops;
// keystrokes are never dropped while a line is being edited
func (r *inputReader) sendEvent(ev Event) {
	select {
	case r.eventCh <- ev:
	case <-r.stopCh:
	}
}
