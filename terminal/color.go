package terminal

import (
	"fmt"
	"strings"
)

// ColorMode indicates terminal color capability
type ColorMode uint8

const (
	ColorMode256       ColorMode = iota // xterm-256 palette
	ColorModeTrueColor                  // 24-bit RGB
	ColorMode16                         // basic SGR 30-37/90-97
)

// ParseColorMode resolves a config/flag value; "auto" detects from environment
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return DetectColorMode(), nil
	case "16", "basic":
		return ColorMode16, nil
	case "256":
		return ColorMode256, nil
	case "truecolor", "true", "24bit":
		return ColorModeTrueColor, nil
	}
	return ColorMode256, fmt.Errorf("unknown color mode %q", s)
}

// Color is one of the 16 console colors, or ColorDefault for the terminal's own default.
// Ordering follows the classic console palette (dark variants first).
type Color int8

const (
	ColorDefault Color = -1

	Black Color = iota - 1
	DarkBlue
	DarkGreen
	DarkCyan
	DarkRed
	DarkMagenta
	DarkYellow
	Gray
	DarkGray
	Blue
	Green
	Cyan
	Red
	Magenta
	Yellow
	White
)

var colorNames = [...]string{
	"black", "dark_blue", "dark_green", "dark_cyan", "dark_red", "dark_magenta", "dark_yellow", "gray",
	"dark_gray", "blue", "green", "cyan", "red", "magenta", "yellow", "white",
}

// String returns the config name of the color
func (c Color) String() string {
	if c < Black || c > White {
		return "default"
	}
	return colorNames[c]
}

// ParseColor resolves a color name as produced by String
func ParseColor(name string) (Color, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "default" {
		return ColorDefault, true
	}
	for i, n := range colorNames {
		if n == name {
			return Color(i), true
		}
	}
	return ColorDefault, false
}

// RGB represents a 24-bit color
type RGB struct {
	R, G, B uint8
}

// xterm default palette values
var consoleRGB = [...]RGB{
	Black:       {0, 0, 0},
	DarkBlue:    {0, 0, 128},
	DarkGreen:   {0, 128, 0},
	DarkCyan:    {0, 128, 128},
	DarkRed:     {128, 0, 0},
	DarkMagenta: {128, 0, 128},
	DarkYellow:  {128, 128, 0},
	Gray:        {192, 192, 192},
	DarkGray:    {128, 128, 128},
	Blue:        {0, 0, 255},
	Green:       {0, 255, 0},
	Cyan:        {0, 255, 255},
	Red:         {255, 0, 0},
	Magenta:     {255, 0, 255},
	Yellow:      {255, 255, 0},
	White:       {255, 255, 255},
}

// ansiIndex maps console colors to the standard 16-color palette
var ansiIndex = [...]int{
	Black:       0,
	DarkBlue:    4,
	DarkGreen:   2,
	DarkCyan:    6,
	DarkRed:     1,
	DarkMagenta: 5,
	DarkYellow:  3,
	Gray:        7,
	DarkGray:    8,
	Blue:        12,
	Green:       10,
	Cyan:        14,
	Red:         9,
	Magenta:     13,
	Yellow:      11,
	White:       15,
}

// ANSI returns the color's index in the 16-color palette, or -1 for ColorDefault
func (c Color) ANSI() int {
	if c < Black || c > White {
		return -1
	}
	return ansiIndex[c]
}

// RGB returns the 24-bit value of the color; ColorDefault maps to Gray
func (c Color) RGB() RGB {
	if c < Black || c > White {
		return consoleRGB[Gray]
	}
	return consoleRGB[c]
}

func (c Color) sgr(background bool) int {
	idx := c.ANSI()
	base := 30
	switch {
	case idx < 0:
		base = 39
		idx = 0
	case idx >= 8:
		base = 90
		idx -= 8
	}
	if background {
		base += 10
	}
	return base + idx
}

// Color cube values for 6x6x6 palette (indices 16-231)
var cubeValues = [6]uint8{0, 95, 135, 175, 215, 255}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// cubeIndex maps 0-255 to nearest cube level 0-5
func cubeIndex(v uint8) uint8 {
	best := 0
	bestDist := abs(int(v) - int(cubeValues[0]))
	for j := 1; j < 6; j++ {
		if d := abs(int(v) - int(cubeValues[j])); d < bestDist {
			bestDist = d
			best = j
		}
	}
	return uint8(best)
}

// RGBTo256 converts RGB to nearest 256-color palette index
func RGBTo256(c RGB) uint8 {
	r, g, b := c.R, c.G, c.B
	cr, cg, cb := cubeIndex(r), cubeIndex(g), cubeIndex(b)

	// Check if grayscale is a better match (when r ≈ g ≈ b)
	// Grayscale ramp: 232-255 maps to luminance 8, 18, 28, ..., 238
	gray := (int(r) + int(g) + int(b)) / 3
	maxDiff := max(abs(int(r)-gray), abs(int(g)-gray), abs(int(b)-gray))

	if maxDiff < 10 && gray >= 4 && gray <= 243 {
		grayIdx := 232 + (gray-8)/10
		if grayIdx < 232 {
			grayIdx = 232
		}
		if grayIdx > 255 {
			grayIdx = 255
		}

		grayLevel := 8 + (grayIdx-232)*10
		grayDist := abs(int(r)-grayLevel) + abs(int(g)-grayLevel) + abs(int(b)-grayLevel)
		cubeDist := abs(int(r)-int(cubeValues[cr])) +
			abs(int(g)-int(cubeValues[cg])) +
			abs(int(b)-int(cubeValues[cb]))

		if grayDist < cubeDist {
			return uint8(grayIdx)
		}
	}

	return 16 + 36*cr + 6*cg + cb
}
