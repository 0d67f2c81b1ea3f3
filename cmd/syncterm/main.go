package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/lixenwraith/syncterm/terminal"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Panic Recovery: Ensure terminal is reset even if a command crashes
	defer recoverAndExit("SYNCTERM")

	if err := newRootCmd().Execute(); err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

// recoverAndExit restores the terminal and exits after a panic in the
// calling goroutine; deferred at the top of every goroutine we start
func recoverAndExit(what string) {
	if r := recover(); r != nil {
		terminal.EmergencyReset(os.Stdout)
		// Use \r\n for raw mode compatibility to avoid zig-zag output
		fmt.Fprintf(os.Stderr, "\r\n\x1b[31m%s CRASHED: %v\x1b[0m\r\n", what, r)
		fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
		os.Exit(1)
	}
}
