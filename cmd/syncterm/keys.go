package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/syncterm/console"
	"github.com/lixenwraith/syncterm/terminal"
)

func newKeysCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Print decoded key presses until Ctrl+C",
		Long: `keys shows how the selected driver decodes each key press: its name,
rune and modifiers. Useful for choosing interrupt_keys in the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			runErr := runKeys(a)
			if err := a.close(); err != nil && runErr == nil {
				runErr = err
			}
			return runErr
		},
	}
}

func runKeys(a *app) error {
	if err := a.console.WriteSegments(console.Colored("press keys, Ctrl+C to quit", terminal.DarkGray)); err != nil {
		return err
	}
	for {
		key, err := a.driver.ReadKey()
		if errors.Is(err, terminal.ErrInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := a.console.WriteText(describeKey(key)); err != nil {
			return err
		}
		if key.Key == terminal.KeyCtrlC {
			return nil
		}
	}
}

// describeKey renders a key press as colored segments
func describeKey(k terminal.KeyInfo) []console.Text {
	name := terminal.KeyName(k.Key)
	if k.Key == terminal.KeyRune {
		name = fmt.Sprintf("%q", k.Rune)
	}

	segs := []console.Text{console.Colored(name, terminal.Yellow)}
	if mods := modifierNames(k.Modifiers); mods != "" {
		segs = append(segs, console.Plain(" "), console.Colored(mods, terminal.Cyan))
	}
	if k.Control {
		segs = append(segs, console.Colored(" control", terminal.DarkGray))
	}
	return segs
}

func modifierNames(m terminal.Modifier) string {
	var s string
	for _, mod := range []struct {
		bit  terminal.Modifier
		name string
	}{
		{terminal.ModCtrl, "ctrl"},
		{terminal.ModAlt, "alt"},
		{terminal.ModShift, "shift"},
	} {
		if m&mod.bit == 0 {
			continue
		}
		if s != "" {
			s += "+"
		}
		s += mod.name
	}
	return s
}
