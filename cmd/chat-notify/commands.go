package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Veraticus/chat-notify/pkg/config"
	"github.com/Veraticus/chat-notify/pkg/history"
	"github.com/Veraticus/chat-notify/pkg/process"
	"github.com/Veraticus/chat-notify/pkg/response"
	"github.com/Veraticus/chat-notify/pkg/types"
)

func newWatchCmd(c *cli) *cobra.Command {
	var (
		noEcho   bool
		noReload bool
		drain    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [FILE]",
		Short: "Evaluate chat lines read from a file or stdin",
		Long: `Read chat lines from FILE, or stdin when FILE is omitted or "-", and
echo them with fired notifications styled. Automatic replies are printed
instead of sent.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.load()
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening input: %w", err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}

			out := &lockedWriter{w: cmd.OutOrStdout()}
			opts := Options{
				Sender:    response.NewLogSender(out),
				AlertOut:  cmd.ErrOrStderr(),
				NoHistory: c.noHistory,
			}
			if !noEcho {
				opts.Echo = out
			}

			deps, err := NewDependencies(cfg, opts)
			if err != nil {
				return err
			}
			defer deps.Close()

			if !noReload {
				if err := deps.WatchConfig(c.path()); err != nil {
					log.Debug().Err(err).Msg("Config hot reload unavailable")
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch(ctx, in, deps, drain)
		},
	}

	cmd.Flags().BoolVar(&noEcho, "no-echo", false, "Do not print input lines")
	cmd.Flags().BoolVar(&noReload, "no-reload", false, "Do not reload notifications when the config file changes")
	cmd.Flags().DurationVar(&drain, "drain", 10*time.Second, "How long to wait for pending replies once input ends")
	return cmd
}

// watch feeds in to the monitor until EOF or cancellation.
func watch(ctx context.Context, in io.Reader, deps *Dependencies, drain time.Duration) error {
	errc := make(chan error, 1)
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := in.Read(buf)
			if n > 0 {
				deps.Monitor.HandleData(buf[:n])
			}
			if errors.Is(err, io.EOF) {
				errc <- nil
				return
			}
			if err != nil {
				errc <- err
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
	}

	deps.Monitor.Flush()
	lines, fired := deps.Monitor.Stats()
	log.Info().Int("lines", lines).Int("fired", fired).Msg("Input finished")

	if deps.Dispatcher != nil && drain > 0 {
		ctx, cancel := context.WithTimeout(ctx, drain)
		defer cancel()
		if err := deps.Dispatcher.Drain(ctx); err != nil {
			log.Warn().Int("pending", deps.Dispatcher.Pending()).Msg("Dropping unsent replies")
		}
	}
	return nil
}

func newWrapCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wrap -- COMMAND [ARGS...]",
		Short: "Run a chat client in a PTY and watch its output",
		Long: `Run COMMAND in a pseudo-terminal. Its output is shown unchanged and
evaluated line by line; automatic replies are typed into its input.
chat-notify exits with the command's exit status.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.load()
			if err != nil {
				return err
			}

			input := &lazyWriter{}
			deps, err := NewDependencies(cfg, Options{
				Sender:    response.NewInputSender(input),
				AlertOut:  cmd.ErrOrStderr(),
				NoHistory: c.noHistory,
			})
			if err != nil {
				return err
			}
			defer deps.Close()

			if err := deps.WatchConfig(c.path()); err != nil {
				log.Debug().Err(err).Msg("Config hot reload unavailable")
			}

			pm := process.NewManagerWithPTY(process.NewPTYManager(), deps.Monitor, cmd.InOrStdin(), cmd.OutOrStdout())
			input.bind(pm)

			if err := pm.Start(args[0], args[1:]); err != nil {
				return err
			}
			waitErr := pm.Wait()
			deps.Close()

			if code := pm.ExitCode(); code != 0 {
				return &exitCodeError{code: code}
			}
			var exitErr *exec.ExitError
			if waitErr != nil && !errors.As(waitErr, &exitErr) {
				return waitErr
			}
			return nil
		},
	}
	// Everything after the command name belongs to the command.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// checkResult is the JSON form of one evaluation.
type checkResult struct {
	Fired     bool            `json:"fired"`
	Index     int             `json:"index"`
	Name      string          `json:"name,omitempty"`
	Trigger   int             `json:"trigger"`
	Match     *spanJSON       `json:"match,omitempty"`
	Styled    *spanJSON       `json:"styled,omitempty"`
	Groups    []string        `json:"groups,omitempty"`
	Style     *types.Style    `json:"style,omitempty"`
	Sound     string          `json:"sound,omitempty"`
	Responses []scheduledJSON `json:"responses,omitempty"`
}

type spanJSON struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type scheduledJSON struct {
	Kind       string `json:"kind"`
	DelayTicks int    `json:"delay_ticks"`
	Payload    string `json:"payload"`
}

func newCheckResult(outcome *types.MatchOutcome) checkResult {
	if outcome == nil {
		return checkResult{Index: -1, Trigger: -1}
	}
	r := checkResult{
		Fired:   true,
		Index:   outcome.NotificationIndex,
		Name:    outcome.NotificationName,
		Trigger: outcome.Match.TriggerIndex,
		Styled:  &spanJSON{Start: outcome.StyleSpan.Start, End: outcome.StyleSpan.End},
		Groups:  outcome.Match.Groups,
		Style: &types.Style{
			Color:         outcome.Style.Color,
			Bold:          outcome.Style.Bold,
			Italic:        outcome.Style.Italic,
			Underlined:    outcome.Style.Underlined,
			Strikethrough: outcome.Style.Strikethrough,
			Obfuscated:    outcome.Style.Obfuscated,
		},
	}
	if outcome.Match.Span != nil {
		r.Match = &spanJSON{Start: outcome.Match.Span.Start, End: outcome.Match.Span.End}
	}
	if outcome.Sound.Enabled {
		r.Sound = outcome.Sound.ID
	}
	for _, s := range outcome.Responses {
		r.Responses = append(r.Responses, scheduledJSON{Kind: s.Kind.String(), DelayTicks: s.DelayTicks, Payload: s.Payload})
	}
	return r
}

func newCheckCmd(c *cli) *cobra.Command {
	var (
		key    string
		self   bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "check TEXT",
		Short: "Show which notification a single line fires",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.load()
			if err != nil {
				return err
			}
			cfg.Quiet = true

			deps, err := NewDependencies(cfg, Options{NoHistory: true})
			if err != nil {
				return err
			}
			defer deps.Close()

			event := types.TextEvent{Text: args[0], TranslationKey: key, SelfOriginated: self}
			outcome := deps.Engine.Evaluate(event)
			out := cmd.OutOrStdout()

			if asJSON {
				data, err := json.MarshalIndent(newCheckResult(outcome), "", "  ")
				if err != nil {
					return fmt.Errorf("encoding result: %w", err)
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}

			if outcome == nil {
				_, err := fmt.Fprintln(out, "No notification fired")
				return err
			}
			_, _ = fmt.Fprintf(out, "Fired: %s (#%d, trigger %d)\n", outcome.NotificationName, outcome.NotificationIndex, outcome.Match.TriggerIndex)
			_, _ = fmt.Fprintf(out, "Text:  %s\n", newRenderer(out).Render(event.Text, outcome.StyleSpan, outcome.Style))
			if outcome.Sound.Enabled {
				_, _ = fmt.Fprintf(out, "Sound: %s\n", outcome.Sound.ID)
			}
			for _, r := range outcome.Responses {
				_, _ = fmt.Fprintf(out, "Reply: %s after %d ticks: %s\n", r.Kind, r.DelayTicks, r.Payload)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Translation key of the message")
	cmd.Flags().BoolVar(&self, "self", false, "Treat the message as sent by the local user")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured notifications in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.load()
			if err != nil {
				return err
			}
			notifications, err := cfg.BuildNotifications()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "#\tNAME\tENABLED\tTRIGGERS\tEXCLUSIONS\tREPLIES\tSOUND")
			for i, n := range notifications {
				_, _ = fmt.Fprintf(tw, "%d\t%s\t%t\t%s\t%d\t%d\t%s\n",
					i, n.Name, n.Enabled, describeTriggers(n.Triggers),
					len(n.ExclusionTriggers), len(n.Responses), describeSound(n.Sound))
			}
			return tw.Flush()
		},
	}
}

func describeTriggers(triggers []types.Trigger) string {
	parts := make([]string, 0, len(triggers))
	for _, t := range triggers {
		if t.String == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%q", t.Type, t.String))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func describeSound(s types.Sound) string {
	if !s.Enabled {
		return "-"
	}
	return s.ID
}

func newHistoryCmd(c *cli) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently fired notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.load()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range entries {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Time.Local().Format(time.DateTime), e.NotificationName, e.Text)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	return cmd
}

func newInitCmd(c *cli) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.path()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig()
			cfg.Notifications = config.DefaultNotifications()
			if err := cfg.Save(path); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
