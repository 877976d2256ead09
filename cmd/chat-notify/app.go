package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"

	"github.com/Veraticus/chat-notify/pkg/alert"
	"github.com/Veraticus/chat-notify/pkg/config"
	"github.com/Veraticus/chat-notify/pkg/engine"
	"github.com/Veraticus/chat-notify/pkg/history"
	"github.com/Veraticus/chat-notify/pkg/interfaces"
	"github.com/Veraticus/chat-notify/pkg/logging"
	"github.com/Veraticus/chat-notify/pkg/matcher"
	"github.com/Veraticus/chat-notify/pkg/monitor"
	"github.com/Veraticus/chat-notify/pkg/registry"
	"github.com/Veraticus/chat-notify/pkg/response"
	"github.com/Veraticus/chat-notify/pkg/style"
)

// Options selects the optional parts of the pipeline.
type Options struct {
	// Sender delivers automatic replies. Nil disables replies.
	Sender response.Sender
	// Echo receives every decoded line, styled when a notification fires.
	// Nil disables echoing.
	Echo io.Writer
	// AlertOut receives alerts when no ntfy topic is configured.
	AlertOut io.Writer
	// NoHistory skips opening the history database.
	NoHistory bool
}

// Dependencies holds all the dependencies for the application
type Dependencies struct {
	Config       *config.Config
	Registry     *registry.Registry
	Engine       *engine.Engine
	Notifier     alert.Notifier
	RateLimiter  interfaces.RateLimiter
	AlertManager *alert.Manager
	History      *history.Store
	Dispatcher   *response.Dispatcher
	Monitor      *monitor.OutputMonitor

	logger  zerolog.Logger
	watcher *config.Watcher
	once    sync.Once
}

// NewDependencies creates all dependencies with the given configuration
func NewDependencies(cfg *config.Config, opts Options) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		logger: logging.GetLogger("app"),
	}

	notifications, err := cfg.BuildNotifications()
	if err != nil {
		return nil, err
	}
	deps.Registry, err = registry.New(notifications)
	if err != nil {
		return nil, fmt.Errorf("building registry: %w", err)
	}
	deps.Engine = engine.New(deps.Registry, matcher.New(), engine.Options{
		AllowSelfMessages: cfg.Self.DetectOwnMessages,
	})

	decoder, err := monitor.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	var handlers []interfaces.OutcomeHandler

	if !cfg.Quiet {
		deps.Notifier = newNotifier(cfg, opts.AlertOut)
		// Only assign a limiter that exists; a typed nil would defeat the
		// manager's nil check.
		if limiter := alert.NewRateLimiter(cfg.RateLimit); limiter != nil {
			deps.RateLimiter = limiter
		}
		deps.AlertManager = alert.NewManager(cfg, deps.Notifier, deps.RateLimiter)
		handlers = append(handlers, deps.AlertManager)
	}

	if !opts.NoHistory && cfg.HistoryPath != "" {
		deps.History, err = history.Open(cfg.HistoryPath)
		if err != nil {
			deps.Close()
			return nil, err
		}
		handlers = append(handlers, deps.History)
	}

	if opts.Sender != nil {
		deps.Dispatcher = response.NewDispatcher(opts.Sender, cfg.TickDuration)
		handlers = append(handlers, deps.Dispatcher)
	}

	deps.Monitor = monitor.NewOutputMonitor(decoder, deps.Engine, handlers...)
	if opts.Echo != nil {
		deps.Monitor.SetEcho(monitor.NewEcho(opts.Echo, newRenderer(opts.Echo)))
	}

	return deps, nil
}

func newNotifier(cfg *config.Config, out io.Writer) alert.Notifier {
	if cfg.NtfyTopic != "" {
		return alert.NewNtfyClient(cfg.NtfyServer, cfg.NtfyTopic)
	}
	if out == nil {
		out = os.Stderr
	}
	return alert.NewStdoutNotifier(out)
}

// newRenderer styles for the terminal when w is one and falls back to plain
// text for pipes and files.
func newRenderer(w io.Writer) *style.Renderer {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return style.NewRenderer(w)
	}
	return style.NewRendererWithProfile(w, termenv.Ascii)
}

// Reload swaps the notification list for the one in cfg. Settings other
// than notifications take effect on restart.
func (d *Dependencies) Reload(cfg *config.Config) error {
	notifications, err := cfg.BuildNotifications()
	if err != nil {
		return err
	}
	if err := d.Registry.Replace(notifications); err != nil {
		return err
	}
	d.logger.Info().
		Int("notifications", len(notifications)).
		Uint64("version", d.Registry.Snapshot().Version()).
		Msg("Notifications reloaded")
	return nil
}

// WatchConfig reloads notifications whenever the file at path changes.
func (d *Dependencies) WatchConfig(path string) error {
	w, err := config.Watch(path, func(cfg *config.Config) {
		if err := d.Reload(cfg); err != nil {
			d.logger.Warn().Err(err).Msg("Keeping previous notifications")
		}
	})
	if err != nil {
		return err
	}
	d.watcher = w
	return nil
}

// Close cleans up all dependencies
func (d *Dependencies) Close() {
	d.once.Do(func() {
		if d.watcher != nil {
			_ = d.watcher.Close()
		}
		if d.Monitor != nil {
			d.Monitor.Flush()
		}
		if d.Dispatcher != nil {
			_ = d.Dispatcher.Close()
		}
		if d.AlertManager != nil {
			_ = d.AlertManager.Close()
		}
		if c, ok := d.Notifier.(io.Closer); ok {
			_ = c.Close()
		}
		if d.History != nil {
			_ = d.History.Close()
		}
	})
}

// lazyWriter forwards writes to a target bound after construction. The
// reply sender needs the wrapped process, which in turn needs the monitor.
type lazyWriter struct {
	mu     sync.Mutex
	target io.Writer
}

func (l *lazyWriter) bind(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.target = w
}

func (l *lazyWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	target := l.target
	l.mu.Unlock()
	if target == nil {
		return 0, fmt.Errorf("no input target bound")
	}
	return target.Write(p)
}

// lockedWriter serializes writes from the echo and the reply sender, which
// run on different goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
