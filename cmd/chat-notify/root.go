package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Veraticus/chat-notify/pkg/config"
	"github.com/Veraticus/chat-notify/pkg/logging"
)

// Set by the release build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cli holds the persistent flag values shared by every command.
type cli struct {
	configPath string
	verbosity  int
	quiet      bool
	noHistory  bool
}

// exitCodeError carries a wrapped process's exit status back to main.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "chat-notify",
		Short: "Highlight, alert and auto-reply on chat lines",
		Long: `chat-notify watches chat output, one message per line, and checks every
line against an ordered list of notifications. The first notification that
fires restyles the matched text, can raise an alert and can schedule
automatic replies.

Configuration file: ~/.config/chat-notify/config.yaml (override with
--config or CHAT_NOTIFY_CONFIG). Any setting can also be given as a
CHAT_NOTIFY_* environment variable, for example CHAT_NOTIFY_NTFY_TOPIC.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(c.verbosity, "")
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to config file")
	root.PersistentFlags().CountVarP(&c.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	root.PersistentFlags().BoolVar(&c.quiet, "quiet", false, "Disable all alerts")
	root.PersistentFlags().BoolVar(&c.noHistory, "no-history", false, "Do not record fired notifications")

	root.SetGlobalNormalizationFunc(normalizeFlag)

	root.AddCommand(
		newWatchCmd(c),
		newWrapCmd(c),
		newCheckCmd(c),
		newListCmd(c),
		newHistoryCmd(c),
		newInitCmd(c),
		newVersionCmd(),
	)
	return root
}

// normalizeFlag accepts the config file spelling of flag names, so
// --no_history works like --no-history.
func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func (c *cli) path() string {
	if c.configPath != "" {
		return c.configPath
	}
	return config.Path()
}

// load reads the configuration and applies command line overrides. The
// logger is reconfigured so that a configured log file takes effect.
func (c *cli) load() (*config.Config, error) {
	cfg, err := config.Load(c.path())
	if err != nil {
		return nil, err
	}
	if c.quiet {
		cfg.Quiet = true
	}
	if cfg.LogFile != "" {
		logging.SetupLogger(c.verbosity, cfg.LogFile)
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "chat-notify version %s\n", version)
			_, _ = fmt.Fprintf(out, "  commit: %s\n", commit)
			_, _ = fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}
