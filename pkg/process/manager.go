package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/Veraticus/chat-notify/pkg/interfaces"
	"github.com/Veraticus/chat-notify/pkg/logging"
)

// WrappedEnv is set in the child's environment to prevent nested wrapping.
const WrappedEnv = "CHAT_NOTIFY_WRAPPED"

// Manager runs the wrapped chat client. Output goes to the terminal and to
// the output handler; Write injects input such as automatic responses.
type Manager struct {
	ptyManager    PTY
	outputHandler interfaces.DataHandler
	stdin         io.Reader
	stdout        io.Writer
	logger        zerolog.Logger

	exitCode int
	mu       sync.Mutex
	sigChan  chan os.Signal
	done     chan struct{}
	ioDone   chan struct{}
}

// NewManager creates a manager attached to the process's own terminal.
func NewManager(outputHandler interfaces.DataHandler) *Manager {
	return NewManagerWithPTY(NewPTYManager(), outputHandler, os.Stdin, os.Stdout)
}

// NewManagerWithPTY creates a manager over an arbitrary PTY and streams.
func NewManagerWithPTY(p PTY, outputHandler interfaces.DataHandler, stdin io.Reader, stdout io.Writer) *Manager {
	return &Manager{
		ptyManager:    p,
		outputHandler: outputHandler,
		stdin:         stdin,
		stdout:        stdout,
		logger:        logging.GetLogger("process"),
		done:          make(chan struct{}),
		ioDone:        make(chan struct{}),
	}
}

// Start starts command and begins copying I/O.
func (m *Manager) Start(command string, args []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if os.Getenv(WrappedEnv) == "1" {
		return fmt.Errorf("already wrapped by chat-notify")
	}

	env := append(os.Environ(), WrappedEnv+"=1")
	if err := m.ptyManager.Start(command, args, env); err != nil {
		return fmt.Errorf("failed to start process: %w", err)
	}
	m.logger.Info().Str("command", command).Strs("args", args).Msg("Started wrapped process")

	go func() {
		defer close(m.ioDone)
		var handler func([]byte)
		if m.outputHandler != nil {
			handler = m.outputHandler.HandleData
		}
		if err := m.ptyManager.CopyIO(m.stdin, m.stdout, handler); err != nil {
			m.logger.Warn().Err(err).Msg("I/O error")
		}
	}()

	m.setupSignalForwarding()
	return nil
}

// Write sends input to the wrapped process.
func (m *Manager) Write(p []byte) (int, error) {
	return m.ptyManager.Write(p)
}

// Wait waits for the process to exit and for its output to drain.
func (m *Manager) Wait() error {
	err := m.ptyManager.Wait()
	if errors.Is(err, ErrNotStarted) {
		return err
	}
	<-m.ioDone

	m.mu.Lock()
	if state := m.ptyManager.ProcessState(); state != nil {
		m.exitCode = state.ExitCode()
	}
	m.mu.Unlock()

	_ = m.ptyManager.Stop()

	if f, ok := m.outputHandler.(interface{ Flush() }); ok {
		f.Flush()
	}

	close(m.done)
	m.cleanupSignals()

	return err
}

// ExitCode returns the exit code of the process.
func (m *Manager) ExitCode() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exitCode
}

func (m *Manager) setupSignalForwarding() {
	m.sigChan = make(chan os.Signal, 1)
	signal.Notify(m.sigChan,
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGHUP,
		syscall.SIGQUIT,
		syscall.SIGUSR1,
		syscall.SIGUSR2,
	)
	go m.forwardSignals(m.sigChan)
}

func (m *Manager) forwardSignals(sigChan <-chan os.Signal) {
	for {
		select {
		case sig := <-sigChan:
			if proc := m.ptyManager.Process(); proc != nil {
				if err := proc.Signal(sig); err != nil && err != os.ErrProcessDone {
					m.logger.Warn().Err(err).Str("signal", sig.String()).Msg("Signal forward error")
				}
			}
		case <-m.done:
			return
		}
	}
}

func (m *Manager) cleanupSignals() {
	if m.sigChan != nil {
		signal.Stop(m.sigChan)
	}
}

// Stop restores the terminal and asks the process to terminate.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_ = m.ptyManager.Stop()

	if proc := m.ptyManager.Process(); proc != nil {
		if err := proc.Signal(syscall.SIGTERM); err != nil && err != os.ErrProcessDone {
			return proc.Kill()
		}
	}
	return nil
}
