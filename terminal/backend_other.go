//go:build !unix

package terminal

import "os"

type unsupportedBackend struct{}

// NewStdBackend returns a backend that fails Init on platforms without termios
func NewStdBackend() Backend {
	return unsupportedBackend{}
}

// NewFileBackend returns a backend that fails Init on platforms without termios
func NewFileBackend(in, out *os.File) Backend {
	return unsupportedBackend{}
}

func (unsupportedBackend) Init() error                             { return ErrNotTerminal }
func (unsupportedBackend) Fini()                                   {}
func (unsupportedBackend) Size() (int, int)                        { return 80, 24 }
func (unsupportedBackend) Write(p []byte) error                    { return ErrNotTerminal }
func (unsupportedBackend) Read(<-chan struct{}) ([]byte, error)    { return nil, ErrNotTerminal }
