package terminal

import (
	"fmt"
	"sync"
)

// Service manages the ANSI driver lifecycle
type Service struct {
	mu        sync.Mutex
	driver    *ANSI
	backend   Backend
	colorMode ColorMode
	running   bool
}

// NewService creates a terminal service over the process stdin/stdout
func NewService() *Service {
	return &Service{backend: NewStdBackend()}
}

// NewServiceWithBackend creates a terminal service over an explicit backend
func NewServiceWithBackend(b Backend) *Service {
	return &Service{backend: b}
}

// Name implements service.Service
func (s *Service) Name() string {
	return "terminal"
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	return nil
}

// Init implements service.Service
// args[0]: ColorMode (optional, defaults to DetectColorMode())
func (s *Service) Init(args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.colorMode = DetectColorMode()
	if len(args) > 0 {
		if cm, ok := args[0].(ColorMode); ok {
			s.colorMode = cm
		}
	}

	s.driver = NewANSI(s.backend, s.colorMode)
	return nil
}

// Start implements service.Service - enters raw mode and starts reading input
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.driver == nil {
		return fmt.Errorf("terminal service started before init")
	}
	if err := s.driver.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	s.running = true
	return nil
}

// Stop implements service.Service - restores the terminal; idempotent
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	s.driver.Fini()
	return nil
}

// Driver returns the wrapped driver, nil before Init
func (s *Service) Driver() *ANSI {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.driver
}

// Terminal returns the driver as a terminal.Driver, nil until started
func (s *Service) Terminal() Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	return s.driver
}

// Beep rings the bell of the running terminal
func (s *Service) Beep() error {
	s.mu.Lock()
	d, running := s.driver, s.running
	s.mu.Unlock()
	if !running {
		return ErrNotTerminal
	}
	return d.Beep()
}
