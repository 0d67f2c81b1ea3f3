package console

import "github.com/lixenwraith/syncterm/terminal"

// Text is a run of characters with optional colors.
// Absent colors fall back to whatever the terminal used before the write.
type Text struct {
	data  string
	fg    terminal.Color
	bg    terminal.Color
	hasFg bool
	hasBg bool
}

// Plain returns uncolored text
func Plain(s string) Text {
	return Text{data: s}
}

// Colored returns text with a foreground color
func Colored(s string, fg terminal.Color) Text {
	return Text{data: s, fg: fg, hasFg: true}
}

// ColoredOn returns text with foreground and background colors
func ColoredOn(s string, fg, bg terminal.Color) Text {
	return Text{data: s, fg: fg, bg: bg, hasFg: true, hasBg: true}
}

func (t Text) Data() string { return t.data }

func (t Text) Foreground() (terminal.Color, bool) { return t.fg, t.hasFg }

func (t Text) Background() (terminal.Color, bool) { return t.bg, t.hasBg }

// resolve returns the colors to render with, given the saved defaults
func (t Text) resolve(defFg, defBg terminal.Color) (fg, bg terminal.Color) {
	fg, bg = defFg, defBg
	if t.hasFg {
		fg = t.fg
	}
	if t.hasBg {
		bg = t.bg
	}
	return fg, bg
}
