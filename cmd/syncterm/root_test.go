package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/syncterm/config"
)

func TestRootCommand(t *testing.T) {
	root := newRootCmd()
	assert.Equal(t, "syncterm", root.Use)
	assert.NotEmpty(t, root.Short)
	assert.NotEmpty(t, root.Long)
	assert.True(t, root.SilenceUsage)

	found := make(map[string]bool)
	for _, c := range root.Commands() {
		found[c.Name()] = true
	}
	for _, name := range []string{"chat", "keys", "version"} {
		assert.True(t, found[name], "missing subcommand %s", name)
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "syncterm version "+version+"\n", buf.String())
}

func TestVersionFlag(t *testing.T) {
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"--version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "syncterm version "+version+"\n", buf.String())
}

func parseOptions(t *testing.T, args ...string) (*rootOptions, *cobra.Command) {
	t.Helper()
	opts := &rootOptions{}
	cmd := &cobra.Command{Use: "test"}
	opts.bind(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return opts, cmd
}

func TestLoadDefaults(t *testing.T) {
	opts, cmd := parseOptions(t)
	cfg, err := opts.load(cmd)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syncterm.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
prompt = "file> "
bell = "off"
driver = "tcell"
`), 0o644))
	t.Setenv("SYNCTERM_PROMPT", "env> ")
	t.Setenv("SYNCTERM_BELL", "tone")

	opts, cmd := parseOptions(t, "--config", path, "--prompt", "flag> ", "--allow-empty", "--log-level", "debug")
	cfg, err := opts.load(cmd)
	require.NoError(t, err)

	assert.Equal(t, "flag> ", cfg.Prompt)
	assert.Equal(t, "tone", cfg.Bell)
	assert.Equal(t, config.DriverTcell, cfg.Driver)
	assert.True(t, cfg.AllowEmptyLine)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsInvalidFlag(t *testing.T) {
	opts, cmd := parseOptions(t, "--driver", "curses")
	_, err := opts.load(cmd)
	require.ErrorIs(t, err, config.ErrInvalid)

	opts, cmd = parseOptions(t, "--prompt", "")
	_, err = opts.load(cmd)
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestChatRejectsBadFlags(t *testing.T) {
	for _, args := range [][]string{
		{"chat", "--writers=-1"},
		{"chat", "--interval=0s"},
		{"chat", "extra"},
	} {
		root := newRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs(args)
		assert.Error(t, root.Execute(), "args %v", args)
	}
}
