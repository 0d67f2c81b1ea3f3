package console

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lixenwraith/syncterm/terminal"
)

// fakeDriver is a virtual terminal grid with unbounded rows.
// Output calls that overlap in time are counted; the console must never
// let that happen.
type fakeDriver struct {
	width int

	mu       sync.Mutex
	rows     [][]rune
	col, row int
	fg, bg   terminal.Color
	// colors records the foreground of every written cell, keyed by row*width+col
	colors map[int]terminal.Color

	inFlight atomic.Int32
	overlaps atomic.Int32

	idle chan struct{}
	keys chan keyResult
}

type keyResult struct {
	info terminal.KeyInfo
	err  error
}

func newFakeDriver(width int) *fakeDriver {
	return &fakeDriver{
		width:  width,
		fg:     terminal.ColorDefault,
		bg:     terminal.ColorDefault,
		colors: make(map[int]terminal.Color),
		idle:   make(chan struct{}),
		keys:   make(chan keyResult),
	}
}

func (d *fakeDriver) enter() {
	if d.inFlight.Add(1) > 1 {
		d.overlaps.Add(1)
	}
	// Widen the race window so unsynchronized callers would collide
	time.Sleep(time.Microsecond)
}

func (d *fakeDriver) exit() {
	d.inFlight.Add(-1)
}

func (d *fakeDriver) ensureRow(row int) {
	for len(d.rows) <= row {
		d.rows = append(d.rows, []rune(strings.Repeat(" ", d.width)))
	}
}

func (d *fakeDriver) put(r rune) {
	switch r {
	case '\n':
		d.col = 0
		d.row++
		return
	case '\r':
		d.col = 0
		return
	}
	d.ensureRow(d.row)
	d.rows[d.row][d.col] = r
	d.colors[d.row*d.width+d.col] = d.fg
	d.col++
	if d.col == d.width {
		d.col = 0
		d.row++
	}
}

func (d *fakeDriver) WriteText(s string) {
	d.enter()
	defer d.exit()
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range s {
		d.put(r)
	}
}

func (d *fakeDriver) WriteRune(r rune) {
	d.enter()
	defer d.exit()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.put(r)
}

func (d *fakeDriver) SetForeground(c terminal.Color) {
	d.enter()
	defer d.exit()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fg = c
}

func (d *fakeDriver) SetBackground(c terminal.Color) {
	d.enter()
	defer d.exit()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bg = c
}

func (d *fakeDriver) Foreground() terminal.Color {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fg
}

func (d *fakeDriver) Background() terminal.Color {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bg
}

// ReadKey parks on idle until the test hands it a key
func (d *fakeDriver) ReadKey() (terminal.KeyInfo, error) {
	d.idle <- struct{}{}
	k := <-d.keys
	return k.info, k.err
}

func (d *fakeDriver) CursorColumn() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.col
}

func (d *fakeDriver) CursorRow() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.row
}

func (d *fakeDriver) SetCursorPosition(col, row int) {
	d.enter()
	defer d.exit()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.col, d.row = col, row
}

func (d *fakeDriver) BufferWidth() int {
	return d.width
}

// line returns a grid row with trailing blanks removed
func (d *fakeDriver) line(row int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if row >= len(d.rows) {
		return ""
	}
	return strings.TrimRight(string(d.rows[row]), " ")
}

// lines returns every row written so far, trailing blanks removed
func (d *fakeDriver) lines() []string {
	d.mu.Lock()
	n := len(d.rows)
	d.mu.Unlock()
	out := make([]string, n)
	for i := range out {
		out[i] = d.line(i)
	}
	return out
}

// linear reads n cells starting at (0, row) as one string
func (d *fakeDriver) linear(row, n int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var sb strings.Builder
	for i := 0; i < n; i++ {
		r, c := row+i/d.width, i%d.width
		if r >= len(d.rows) {
			sb.WriteRune(' ')
			continue
		}
		sb.WriteRune(d.rows[r][c])
	}
	return sb.String()
}

func (d *fakeDriver) cursor() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.col, d.row
}

func (d *fakeDriver) colorAt(col, row int) terminal.Color {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.colors[row*d.width+col]
}

// session drives one ReadLine call with scripted keys
type session struct {
	t      *testing.T
	d      *fakeDriver
	parked bool
	done   chan readResult
}

type readResult struct {
	line string
	err  error
}

func startRead(t *testing.T, c *Console, d *fakeDriver) *session {
	t.Helper()
	s := &session{t: t, d: d, done: make(chan readResult, 1)}
	go func() {
		line, err := c.ReadLine()
		s.done <- readResult{line: line, err: err}
	}()
	s.settle()
	return s
}

// settle waits until every key sent so far has been handled
func (s *session) settle() {
	s.t.Helper()
	if s.parked {
		return
	}
	select {
	case <-s.d.idle:
		s.parked = true
	case <-time.After(2 * time.Second):
		s.t.Fatal("reader did not ask for a key")
	}
}

func (s *session) press(keys ...terminal.KeyInfo) {
	s.t.Helper()
	for _, k := range keys {
		s.send(keyResult{info: k})
	}
}

func (s *session) fail(err error) {
	s.t.Helper()
	s.send(keyResult{err: err})
}

func (s *session) send(k keyResult) {
	s.t.Helper()
	s.settle()
	s.parked = false
	select {
	case s.d.keys <- k:
	case <-time.After(2 * time.Second):
		s.t.Fatal("reader did not take the key")
	}
}

func (s *session) typeText(text string) {
	s.t.Helper()
	for _, r := range text {
		s.press(runeKey(r))
	}
}

func (s *session) result() readResult {
	s.t.Helper()
	select {
	case r := <-s.done:
		return r
	case <-time.After(2 * time.Second):
		s.t.Fatal("ReadLine did not return")
	}
	return readResult{}
}

func runeKey(r rune) terminal.KeyInfo {
	return terminal.KeyInfo{Rune: r, Key: terminal.KeyRune}
}

func controlKey(k terminal.Key) terminal.KeyInfo {
	return terminal.KeyInfo{Control: true, Key: k}
}

var (
	keyEnter     = controlKey(terminal.KeyEnter)
	keyBackspace = controlKey(terminal.KeyBackspace)
	keyDelete    = controlKey(terminal.KeyDelete)
	keyLeft      = controlKey(terminal.KeyLeft)
	keyRight     = controlKey(terminal.KeyRight)
	keyHome      = controlKey(terminal.KeyHome)
	keyEnd       = controlKey(terminal.KeyEnd)
)

// state returns the edit buffer and cursor offset under the lock
func (c *Console) state() (string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.buf), c.pos
}

type countingBell struct {
	n atomic.Int32
}

func (b *countingBell) Ring() { b.n.Add(1) }
