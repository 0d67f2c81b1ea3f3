package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/syncterm/config"
)

// rootOptions holds the persistent flags; only flags the user set override
// the file and environment configuration
type rootOptions struct {
	configPath string
	prompt     string
	driver     string
	color      string
	bell       string
	allowEmpty bool
	logLevel   string
	logFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "syncterm",
		Short: "Line-editing console shared by concurrent writers",
		Long: `syncterm demonstrates a terminal console where many goroutines print
while one reader edits a line. Output appears above the prompt and the
line being typed is redrawn intact after every write.`,
		// SilenceUsage prevents printing usage on errors handled by us
		SilenceUsage: true,
		Version:      version,
	}
	cmd.SetVersionTemplate(`{{printf "syncterm version %s\n" .Version}}`)

	opts.bind(cmd)

	cmd.AddCommand(newChatCmd(opts))
	cmd.AddCommand(newKeysCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// bind registers the options as persistent flags of cmd
func (o *rootOptions) bind(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.configPath, "config", "c", "", "TOML config file")
	flags.StringVar(&o.prompt, "prompt", "", "prompt shown before the edit line")
	flags.StringVar(&o.driver, "driver", "", "terminal driver: ansi, tcell")
	flags.StringVar(&o.color, "color", "", "color mode: auto, 16, 256, truecolor")
	flags.StringVar(&o.bell, "bell", "", "bell on rejected edits: off, terminal, tone")
	flags.BoolVar(&o.allowEmpty, "allow-empty", false, "let Enter submit an empty line")
	flags.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&o.logFile, "log-file", "", "write logs to a file instead of the console")
}

// load resolves the configuration for a command: defaults, file, env, flags
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		if err := cfg.LoadFile(o.configPath); err != nil {
			return nil, err
		}
	}
	if err := cfg.LoadEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("prompt") {
		cfg.Prompt = o.prompt
	}
	if flags.Changed("driver") {
		cfg.Driver = o.driver
	}
	if flags.Changed("color") {
		cfg.ColorMode = o.color
	}
	if flags.Changed("bell") {
		cfg.Bell = o.bell
	}
	if flags.Changed("allow-empty") {
		cfg.AllowEmptyLine = o.allowEmpty
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = o.logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of syncterm",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "syncterm version %s\n", version)
		},
	}
}
