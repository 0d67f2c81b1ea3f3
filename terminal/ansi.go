package terminal

import (
	"bufio"
)

// Pre-allocated ANSI sequence fragments
var (
	csi     = []byte("\x1b[")
	csiSGR0 = []byte("\x1b[0m")
	crlf    = []byte("\r\n")
	bel     = []byte{0x07}

	csiCursorShow = []byte("\x1b[?25h")
	csiAutoWrapOn = []byte("\x1b[?7h")

	// Color prefixes
	csiFg256     = []byte("\x1b[38;5;") // followed by N;m
	csiBg256     = []byte("\x1b[48;5;") // followed by N;m
	csiFgRGB     = []byte("\x1b[38;2;") // followed by R;G;B;m
	csiBgRGB     = []byte("\x1b[48;2;") // followed by R;G;B;m
	csiDefaultFg = []byte("\x1b[39m")
	csiDefaultBg = []byte("\x1b[49m")
)

// writeInt writes an integer without allocation
// Optimized for terminal values (0-255 common, 0-999 typical max)
func writeInt(w *bufio.Writer, n int) {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		w.WriteByte(byte(n) + '0')
		return
	}
	if n < 100 {
		w.WriteByte(byte(n/10) + '0')
		w.WriteByte(byte(n%10) + '0')
		return
	}
	if n < 1000 {
		w.WriteByte(byte(n/100) + '0')
		w.WriteByte(byte(n/10%10) + '0')
		w.WriteByte(byte(n%10) + '0')
		return
	}
	var buf [20]byte
	i := len(buf) - 1
	for n > 0 {
		buf[i] = byte(n%10) + '0'
		n /= 10
		i--
	}
	w.Write(buf[i+1:])
}

// writeCursorVertical moves the cursor dy rows (negative is up) without scrolling
func writeCursorVertical(w *bufio.Writer, dy int) {
	if dy == 0 {
		return
	}
	w.Write(csi)
	if dy < 0 {
		writeInt(w, -dy)
		w.WriteByte('A')
		return
	}
	writeInt(w, dy)
	w.WriteByte('B')
}

// writeCursorColumn writes CHA for a 0-indexed column
func writeCursorColumn(w *bufio.Writer, x int) {
	w.Write(csi)
	writeInt(w, x+1)
	w.WriteByte('G')
}

// writeColor emits the SGR sequence selecting c as foreground or background
func writeColor(w *bufio.Writer, c Color, mode ColorMode, background bool) {
	if c == ColorDefault {
		if background {
			w.Write(csiDefaultBg)
		} else {
			w.Write(csiDefaultFg)
		}
		return
	}

	switch mode {
	case ColorModeTrueColor:
		rgb := c.RGB()
		if background {
			w.Write(csiBgRGB)
		} else {
			w.Write(csiFgRGB)
		}
		writeInt(w, int(rgb.R))
		w.WriteByte(';')
		writeInt(w, int(rgb.G))
		w.WriteByte(';')
		writeInt(w, int(rgb.B))
		w.WriteByte('m')
	case ColorMode256:
		if background {
			w.Write(csiBg256)
		} else {
			w.Write(csiFg256)
		}
		writeInt(w, int(RGBTo256(c.RGB())))
		w.WriteByte('m')
	default:
		w.Write(csi)
		writeInt(w, c.sgr(background))
		w.WriteByte('m')
	}
}
