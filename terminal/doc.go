// Package terminal provides the console's terminal driver: direct ANSI control
// of a raw-mode tty with a shadow cursor.
//
// Features:
//   - Driver interface consumed by the console (text, colors, keys, cursor, width)
//   - Raw stdin input parsing with escape sequence handling
//   - 16-color console palette emitted as basic, 256-color or 24-bit SGR
//   - Shadow cursor tracking with explicit line wrap at the buffer width
//   - Clean terminal restoration on exit/panic
//
// This package bypasses terminfo/termcap entirely, emitting direct ANSI sequences.
// Target environments: Linux, macOS, BSDs with xterm-compatible terminals.
package terminal
