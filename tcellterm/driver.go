// Package tcellterm implements terminal.Driver on a tcell screen.
//
// The screen is treated as a scrolling line surface: the driver keeps its own
// cursor, draws runes cell by cell and shifts the grid up one row when output
// runs past the bottom.
package tcellterm

import (
	"sync"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/syncterm/terminal"
)

const tabWidth = 8

// Driver draws on a tcell.Screen
type Driver struct {
	screen tcell.Screen

	// mu guards the fields below; ReadKey never takes it
	mu            sync.Mutex
	fg, bg        terminal.Color
	style         tcell.Style
	col, row      int
	width, height int
	initialized   bool
}

// New wraps screen. Init must be called before use.
func New(screen tcell.Screen) *Driver {
	return &Driver{
		screen: screen,
		fg:     terminal.ColorDefault,
		bg:     terminal.ColorDefault,
		style:  tcell.StyleDefault,
	}
}

// NewScreen creates a driver on the process terminal
func NewScreen() (*Driver, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return New(screen), nil
}

// Init initializes the screen and samples its size
func (d *Driver) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized {
		return nil
	}
	if err := d.screen.Init(); err != nil {
		return err
	}
	d.screen.SetStyle(tcell.StyleDefault)
	d.screen.Clear()
	d.width, d.height = d.screen.Size()
	if d.width < 1 {
		d.width = 1
	}
	if d.height < 1 {
		d.height = 1
	}
	d.initialized = true
	d.show()
	return nil
}

// Fini restores the terminal. A blocked ReadKey returns ErrInputClosed.
func (d *Driver) Fini() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return
	}
	d.initialized = false
	d.screen.Fini()
}

// Screen returns the underlying tcell screen
func (d *Driver) Screen() tcell.Screen {
	return d.screen
}

func (d *Driver) WriteText(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, r := range s {
		d.put(r)
	}
	d.show()
}

func (d *Driver) WriteRune(r rune) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.put(r)
	d.show()
}

func (d *Driver) put(r rune) {
	switch {
	case r == '\n':
		d.newline()
		return
	case r == '\r':
		d.col = 0
		return
	case r == '\t':
		n := tabWidth - d.col%tabWidth
		for i := 0; i < n; i++ {
			d.put(' ')
		}
		return
	case unicode.IsControl(r):
		return
	}

	d.screen.SetContent(d.col, d.row, r, nil, d.style)
	d.col++
	if d.col >= d.width {
		d.newline()
	}
}

func (d *Driver) newline() {
	d.col = 0
	d.row++
	if d.row >= d.height {
		d.scroll()
		d.row = d.height - 1
	}
}

// scroll moves every row up one and blanks the last
func (d *Driver) scroll() {
	for y := 1; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			mainc, combc, style, _ := d.screen.GetContent(x, y)
			d.screen.SetContent(x, y-1, mainc, combc, style)
		}
	}
	for x := 0; x < d.width; x++ {
		d.screen.SetContent(x, d.height-1, ' ', nil, tcell.StyleDefault)
	}
}

func (d *Driver) show() {
	if !d.initialized {
		return
	}
	d.screen.ShowCursor(d.col, d.row)
	d.screen.Show()
}

func (d *Driver) SetForeground(c terminal.Color) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.fg = c
	d.style = d.style.Foreground(tcellColor(c))
}

func (d *Driver) SetBackground(c terminal.Color) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.bg = c
	d.style = d.style.Background(tcellColor(c))
}

func (d *Driver) Foreground() terminal.Color {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fg
}

func (d *Driver) Background() terminal.Color {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bg
}

func (d *Driver) CursorColumn() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.col
}

func (d *Driver) CursorRow() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.row
}

// SetCursorPosition clamps to the screen; rows scrolled off the top are gone
func (d *Driver) SetCursorPosition(col, row int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.col = min(max(col, 0), d.width-1)
	d.row = min(max(row, 0), d.height-1)
	d.show()
}

func (d *Driver) BufferWidth() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width
}

// Beep rings the terminal bell
func (d *Driver) Beep() error {
	return d.screen.Beep()
}

// ReadKey blocks on the screen's event queue until a key arrives
func (d *Driver) ReadKey() (terminal.KeyInfo, error) {
	for {
		ev := d.screen.PollEvent()
		if ev == nil {
			return terminal.KeyInfo{}, terminal.ErrInputClosed
		}
		kev, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}
		if info, ok := keyInfo(kev); ok {
			return info, nil
		}
	}
}

// tcellColor maps a console color onto the terminal's 16-color palette
func tcellColor(c terminal.Color) tcell.Color {
	idx := c.ANSI()
	if idx < 0 {
		return tcell.ColorDefault
	}
	return tcell.PaletteColor(idx)
}
