package bell

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// Mode selects how the bell sounds
type Mode string

const (
	ModeOff      Mode = "off"
	ModeTerminal Mode = "terminal"
	ModeTone     Mode = "tone"
)

// ParseMode resolves a config value
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeOff, ModeTerminal, ModeTone:
		return m, nil
	case "":
		return ModeOff, nil
	}
	return ModeOff, fmt.Errorf("unknown bell mode %q", s)
}

// Service wraps the configured bell as a service.Service.
// A tone bell that finds no audio device falls back to the terminal bell,
// then to silence; neither case is an error.
type Service struct {
	mu       sync.Mutex
	mode     Mode
	tone     ToneConfig
	beeper   Beeper
	bell     Bell
	player   *Tone
	disabled atomic.Bool
}

// NewService creates a bell service with the default tone
func NewService() *Service {
	return &Service{mode: ModeOff, tone: DefaultToneConfig(), bell: Off}
}

// Name implements service.Service
func (s *Service) Name() string {
	return "bell"
}

// Dependencies implements service.Service; the terminal bell needs the terminal
func (s *Service) Dependencies() []string {
	return []string{"terminal"}
}

// Init implements service.Service
// args[0]: Mode or string
// args[1]: Beeper used for terminal mode and tone fallback
// args[2]: ToneConfig (optional)
func (s *Service) Init(args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(args) > 0 {
		switch v := args[0].(type) {
		case Mode:
			s.mode = v
		case string:
			m, err := ParseMode(v)
			if err != nil {
				return err
			}
			s.mode = m
		}
	}
	if len(args) > 1 {
		if b, ok := args[1].(Beeper); ok {
			s.beeper = b
		}
	}
	if len(args) > 2 {
		if cfg, ok := args[2].(ToneConfig); ok {
			s.tone = cfg
		}
	}

	if s.mode == ModeTone {
		s.player = NewTone(s.tone)
	}
	return nil
}

// Start implements service.Service
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.mode {
	case ModeTone:
		if err := s.player.Start(); err == nil {
			s.bell = s.player
			return nil
		}
		s.player = nil
		s.disabled.Store(true)
		s.bell = s.terminalOrOff()
	case ModeTerminal:
		s.bell = s.terminalOrOff()
	default:
		s.bell = Off
	}
	return nil
}

func (s *Service) terminalOrOff() Bell {
	if s.beeper == nil {
		return Off
	}
	return Terminal(s.beeper)
}

// Stop implements service.Service
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player != nil {
		s.player.Stop()
	}
	s.bell = Off
	return nil
}

// IsDisabled reports whether the tone bell could not open an audio device
func (s *Service) IsDisabled() bool {
	return s.disabled.Load()
}

// Bell returns the active bell; never nil
func (s *Service) Bell() Bell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bell
}

// Ring rings the active bell
func (s *Service) Ring() {
	s.Bell().Ring()
}
