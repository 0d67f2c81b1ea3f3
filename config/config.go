// Package config loads syncterm settings: defaults, then an optional TOML
// file, then SYNCTERM_* environment variables. Command-line flags are
// applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"

	"github.com/lixenwraith/syncterm/bell"
	"github.com/lixenwraith/syncterm/terminal"
)

// EnvPrefix prefixes every environment variable, e.g. SYNCTERM_PROMPT
const EnvPrefix = "SYNCTERM"

// Drivers
const (
	DriverANSI  = "ansi"
	DriverTcell = "tcell"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

// Config holds all application configuration.
// Environment names derive from the field path, e.g. SYNCTERM_LOG_LEVEL;
// there is no unprefixed fallback.
type Config struct {
	Prompt         string     `toml:"prompt"`
	Driver         string     `toml:"driver"`
	ColorMode      string     `toml:"color_mode" split_words:"true"`
	Bell           string     `toml:"bell"`
	AllowEmptyLine bool       `toml:"allow_empty_line" split_words:"true"`
	InterruptKeys  []string   `toml:"interrupt_keys" split_words:"true"`
	Tone           ToneConfig `toml:"tone"`
	Log            LogConfig  `toml:"log"`
}

// ToneConfig shapes the synthesized bell.
type ToneConfig struct {
	Frequency  float64 `toml:"frequency"`
	DurationMS int     `toml:"duration_ms" split_words:"true"`
	Volume     float64 `toml:"volume"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
	File        string `toml:"file"`
}

// Default returns default configuration.
func Default() *Config {
	tone := bell.DefaultToneConfig()
	return &Config{
		Prompt:        "> ",
		Driver:        DriverANSI,
		ColorMode:     "auto",
		Bell:          string(bell.ModeTerminal),
		InterruptKeys: []string{"ctrl_c", "ctrl_d"},
		Tone: ToneConfig{
			Frequency:  tone.Frequency,
			DurationMS: int(tone.Duration / time.Millisecond),
			Volume:     tone.Volume,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, the TOML file at path (if
// path is non-empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.LoadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the TOML file at path; unknown keys are rejected
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("config %s: %s", path, strict.String())
		}
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// LoadEnv overlays SYNCTERM_* environment variables; unset variables leave
// fields untouched
func (c *Config) LoadEnv() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("failed to load config from environment: %w", err)
	}
	return nil
}

// Validate rejects values the application cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.Prompt == "" {
		errs = append(errs, errors.New("prompt is empty"))
	}
	switch c.Driver {
	case DriverANSI, DriverTcell:
	default:
		errs = append(errs, fmt.Errorf("unknown driver %q", c.Driver))
	}
	if _, err := terminal.ParseColorMode(c.ColorMode); err != nil {
		errs = append(errs, err)
	}
	if _, err := bell.ParseMode(c.Bell); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Interrupts(); err != nil {
		errs = append(errs, err)
	}
	if c.Tone.Frequency <= 0 || c.Tone.DurationMS <= 0 {
		errs = append(errs, errors.New("tone frequency and duration must be positive"))
	}
	if c.Tone.Volume < 0 || c.Tone.Volume > 1 {
		errs = append(errs, fmt.Errorf("tone volume %v out of range 0-1", c.Tone.Volume))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Interrupts resolves InterruptKeys to key constants
func (c *Config) Interrupts() ([]terminal.Key, error) {
	keys := make([]terminal.Key, 0, len(c.InterruptKeys))
	for _, name := range c.InterruptKeys {
		k, ok := terminal.KeyByName(strings.ToLower(strings.TrimSpace(name)))
		if !ok {
			return nil, fmt.Errorf("unknown interrupt key %q", name)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// ColorModeValue resolves ColorMode, detecting from the environment for "auto"
func (c *Config) ColorModeValue() terminal.ColorMode {
	m, err := terminal.ParseColorMode(c.ColorMode)
	if err != nil {
		return terminal.DetectColorMode()
	}
	return m
}

// BellTone converts the tone settings for the bell package
func (c *Config) BellTone() bell.ToneConfig {
	t := bell.DefaultToneConfig()
	t.Frequency = c.Tone.Frequency
	t.Duration = time.Duration(c.Tone.DurationMS) * time.Millisecond
	t.Release = min(t.Release, t.Duration*3/4)
	t.Volume = c.Tone.Volume
	return t
}
