package terminal

// Backend abstracts platform-specific terminal operations.
// The ANSI driver talks to the tty exclusively through this interface,
// which lets tests substitute a pty pair or an in-memory pipe.
type Backend interface {
	// Lifecycle
	Init() error
	Fini()

	// Capabilities
	Size() (width, height int)

	// I/O
	// Write writes raw bytes to the terminal output.
	Write(p []byte) error

	// Read blocks until input is available, the stop channel is closed, or an error occurs.
	// A nil slice with nil error means timeout or stop; io.EOF means input closed.
	Read(stopCh <-chan struct{}) ([]byte, error)
}
