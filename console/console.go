package console

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/lixenwraith/syncterm/terminal"
)

// Console is a terminal shared by concurrent writers and at most one reader.
//
// All fields below mu, and every call into the driver, are guarded by mu.
type Console struct {
	driver terminal.Driver
	log    *zap.Logger

	bell       Bell
	allowEmpty bool
	interrupt  map[terminal.Key]struct{}

	mu      sync.Mutex
	prompt  string
	buf     []rune // edit buffer
	pos     int    // cursor offset into buf, 0 <= pos <= len(buf)
	reading bool
}

// New creates a console drawing on driver
func New(driver terminal.Driver, opts ...Option) *Console {
	c := &Console{
		driver:    driver,
		log:       zap.NewNop(),
		interrupt: make(map[terminal.Key]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Prompt returns the text shown before the edit buffer
func (c *Console) Prompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prompt
}

// SetPrompt replaces the prompt; it cannot change during a read
func (c *Console) SetPrompt(p string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reading {
		return fmt.Errorf("%w: can't set prompt while reading", ErrInvalidState)
	}
	if p == "" {
		return fmt.Errorf("%w: prompt is empty", ErrInvalidArgument)
	}
	c.prompt = p
	return nil
}

// IsReading reports whether a ReadLine is in progress
func (c *Console) IsReading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reading
}

// WriteLine prints text on its own row above the prompt
func (c *Console) WriteLine(text string) error {
	if text == "" {
		return fmt.Errorf("%w: text is empty", ErrInvalidArgument)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.erase()
	c.driver.WriteText(text)
	c.restore()
	return nil
}

// WriteText prints the segments as one row, each in its own colors.
// A nil slice is rejected; empty segments are skipped.
func (c *Console) WriteText(segs []Text) error {
	if segs == nil {
		return fmt.Errorf("%w: segments are nil", ErrInvalidArgument)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	saveFg := c.driver.Foreground()
	saveBg := c.driver.Background()

	c.erase()
	for _, seg := range segs {
		if seg.data == "" {
			continue
		}
		fg, bg := seg.resolve(saveFg, saveBg)
		c.driver.SetForeground(fg)
		c.driver.SetBackground(bg)
		c.driver.WriteText(seg.data)
	}
	c.driver.SetForeground(saveFg)
	c.driver.SetBackground(saveBg)
	c.restore()
	return nil
}

// WriteSegments is the variadic form of WriteText
func (c *Console) WriteSegments(segs ...Text) error {
	if segs == nil {
		segs = []Text{}
	}
	return c.WriteText(segs)
}

// erase moves to column 0 of the prompt's first row so new output overwrites it
func (c *Console) erase() {
	if !c.reading {
		return
	}
	width := c.driver.BufferWidth()
	rows := (c.promptLen() + c.pos) / width
	c.driver.SetCursorPosition(0, c.driver.CursorRow()-rows)
}

// restore blanks the rest of the current row and redraws prompt and buffer
func (c *Console) restore() {
	if col := c.driver.CursorColumn(); col != 0 {
		c.driver.WriteText(strings.Repeat(" ", c.driver.BufferWidth()-col))
	}

	if c.reading {
		c.driver.WriteText(c.prompt)
		c.driver.WriteText(string(c.buf))
		c.moveCursor(c.pos - len(c.buf))
	}
}

func (c *Console) promptLen() int {
	return utf8.RuneCountInString(c.prompt)
}

func (c *Console) ring() {
	if c.bell != nil {
		c.bell.Ring()
	}
}
