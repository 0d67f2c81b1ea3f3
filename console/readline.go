package console

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lixenwraith/syncterm/terminal"
)

// ReadLine shows the prompt and edits a line until Enter.
//
// Only one ReadLine may run at a time; a second concurrent call fails with
// ErrInvalidState instead of waiting. The lock is released while blocked on
// the next key so writers can print between keystrokes.
func (c *Console) ReadLine() (string, error) {
	c.mu.Lock()
	if c.reading {
		c.mu.Unlock()
		return "", fmt.Errorf("%w: some goroutine is already reading", ErrInvalidState)
	}
	c.reading = true
	c.pos = 0
	c.buf = c.buf[:0]
	c.driver.WriteText(c.prompt)
	c.mu.Unlock()

	c.log.Debug("read started")

	for {
		key, err := c.driver.ReadKey()

		c.mu.Lock()
		if err != nil {
			c.finish()
			c.mu.Unlock()
			c.log.Debug("read abandoned", zap.Error(err))
			return "", fmt.Errorf("read key: %w", err)
		}
		line, done, err := c.handleKey(key)
		c.mu.Unlock()

		if done {
			if errors.Is(err, ErrInterrupted) {
				c.log.Debug("read interrupted", zap.String("key", terminal.KeyName(key.Key)))
			} else {
				c.log.Debug("line submitted", zap.Int("length", len([]rune(line))))
			}
			return line, err
		}
	}
}

// handleKey applies one keystroke; done reports the end of the read
func (c *Console) handleKey(key terminal.KeyInfo) (line string, done bool, err error) {
	if key.Printable() {
		c.insert(key.Rune)
		return "", false, nil
	}

	if _, ok := c.interrupt[key.Key]; ok {
		c.finish()
		return "", true, ErrInterrupted
	}

	switch key.Key {
	case terminal.KeyBackspace:
		c.backspace()
	case terminal.KeyDelete:
		c.delete()
	case terminal.KeyEnter:
		if len(c.buf) == 0 && !c.allowEmpty {
			c.ring()
			return "", false, nil
		}
		return c.finish(), true, nil
	case terminal.KeyLeft:
		if c.pos == 0 {
			c.ring()
			break
		}
		c.moveCursor(-1)
		c.pos--
	case terminal.KeyRight:
		if c.pos == len(c.buf) {
			c.ring()
			break
		}
		c.moveCursor(1)
		c.pos++
	case terminal.KeyHome:
		c.moveCursor(-c.pos)
		c.pos = 0
	case terminal.KeyEnd:
		c.moveCursor(len(c.buf) - c.pos)
		c.pos = len(c.buf)
	}
	return "", false, nil
}

// insert writes r and the tail after it, then steps back over the tail
func (c *Console) insert(r rune) {
	tail := c.buf[c.pos:]
	c.driver.WriteRune(r)
	c.driver.WriteText(string(tail))
	c.moveCursor(-len(tail))

	c.buf = append(c.buf, 0)
	copy(c.buf[c.pos+1:], c.buf[c.pos:])
	c.buf[c.pos] = r
	c.pos++
}

// backspace removes the character before the cursor
func (c *Console) backspace() {
	if c.pos == 0 {
		c.ring()
		return
	}

	tail := c.buf[c.pos:]
	c.moveCursor(-1)
	c.driver.WriteText(string(tail) + " ")
	c.moveCursor(-len(tail) - 1)

	c.buf = append(c.buf[:c.pos-1], c.buf[c.pos:]...)
	c.pos--
}

// delete removes the character under the cursor
func (c *Console) delete() {
	if c.pos == len(c.buf) {
		c.ring()
		return
	}

	tail := c.buf[c.pos+1:]
	c.driver.WriteText(string(tail) + " ")
	c.moveCursor(-len(tail) - 1)

	c.buf = append(c.buf[:c.pos], c.buf[c.pos+1:]...)
}

// finish blanks the prompt line, leaves the cursor at its start and ends the read
func (c *Console) finish() string {
	n := c.promptLen() + len(c.buf)
	c.moveCursor(-(c.promptLen() + c.pos))
	c.driver.WriteText(strings.Repeat(" ", n))
	c.moveCursor(-n)

	line := string(c.buf)
	c.reading = false
	c.buf = c.buf[:0]
	c.pos = 0
	return line
}
