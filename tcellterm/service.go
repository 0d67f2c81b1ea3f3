package tcellterm

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/syncterm/terminal"
)

// Service manages a tcell driver lifecycle under the name "terminal",
// so it can stand in for the ANSI terminal service
type Service struct {
	mu      sync.Mutex
	screen  tcell.Screen
	driver  *Driver
	running bool
}

// NewService creates a service that opens the process terminal on Init
func NewService() *Service {
	return &Service{}
}

// NewServiceWithScreen creates a service over an existing screen
func NewServiceWithScreen(screen tcell.Screen) *Service {
	return &Service{screen: screen}
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
func (s *Service) Init(args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("tcell screen: %w", err)
		}
		s.screen = screen
	}
	s.driver = New(s.screen)
	return nil
}

// Start implements service.Service
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.driver == nil {
		return fmt.Errorf("tcell service started before init")
	}
	if err := s.driver.Init(); err != nil {
		return fmt.Errorf("tcell init: %w", err)
	}
	s.running = true
	return nil
}

// Stop implements service.Service; idempotent
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
func (s *Service) Driver() *Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.driver
}

// Terminal returns the driver as a terminal.Driver, nil until started
func (s *Service) Terminal() terminal.Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	return s.driver
}

// Beep rings the bell of the running screen
func (s *Service) Beep() error {
	s.mu.Lock()
	d, running := s.driver, s.running
	s.mu.Unlock()
	if !running {
		return terminal.ErrNotTerminal
	}
	return d.Beep()
}
