package terminal

import (
	"errors"
	"unicode"
)

var (
	// ErrNotTerminal is returned when the input is not a tty
	ErrNotTerminal = errors.New("not a terminal")
	// ErrInputClosed is returned by ReadKey once input reaches EOF or the driver is closed
	ErrInputClosed = errors.New("terminal input closed")
)

// KeyInfo is one decoded key press
type KeyInfo struct {
	Rune      rune     // Character for printable keys
	Control   bool     // True for every non-printable key (arrows, Enter, Ctrl+X, Alt chords)
	Key       Key      // KeyRune for printable keys
	Modifiers Modifier // Shift/Alt/Ctrl where the terminal reports them
}

// Printable reports whether the key inserts a character into a line.
// C0 and C1 control runes never do, even when decoded as KeyRune.
func (k KeyInfo) Printable() bool {
	return !k.Control && k.Rune != 0 && !unicode.IsControl(k.Rune)
}

// Driver is the terminal surface the console draws on.
//
// Cursor coordinates are 0-indexed. Writing a rune in the last column wraps the
// cursor to column 0 of the next row, and '\n' moves to column 0 of the next row.
// Implementations need not be safe for concurrent use; the console serializes
// every call.
type Driver interface {
	WriteText(s string)
	WriteRune(r rune)

	SetForeground(c Color)
	SetBackground(c Color)
	Foreground() Color
	Background() Color

	// ReadKey blocks until a key arrives; input is never echoed
	ReadKey() (KeyInfo, error)

	CursorColumn() int
	CursorRow() int
	SetCursorPosition(col, row int)

	// BufferWidth is the column count, constant for the driver's lifetime
	BufferWidth() int
}

func keyInfoFromEvent(ev Event) KeyInfo {
	if ev.Key == KeyRune && ev.Modifiers&(ModAlt|ModCtrl) == 0 {
		return KeyInfo{Rune: ev.Rune, Key: KeyRune, Modifiers: ev.Modifiers}
	}
	return KeyInfo{Rune: ev.Rune, Control: true, Key: ev.Key, Modifiers: ev.Modifiers}
}
