// Package console serializes terminal output from many goroutines around a
// single line-editing reader.
//
// Every write erases the prompt and the in-progress input, prints, then redraws
// them, all under one lock; the reader holds that lock only while handling a
// keystroke, never while waiting for one. Cursor math counts characters, not
// grapheme clusters, and assumes the terminal width does not change.
package console
