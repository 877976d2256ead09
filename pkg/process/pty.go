package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/Veraticus/chat-notify/pkg/logging"
)

// ErrNotStarted is returned when the PTY is used before Start.
var ErrNotStarted = errors.New("process not started")

// PTYManager handles PTY-based process execution.
type PTYManager struct {
	cmd      *exec.Cmd
	pty      *os.File
	mu       sync.Mutex
	writeMu  sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
	restore  func()
	logger   zerolog.Logger
}

var _ PTY = (*PTYManager)(nil)

// NewPTYManager creates a new PTY manager.
func NewPTYManager() *PTYManager {
	return &PTYManager{
		stopChan: make(chan struct{}),
		logger:   logging.GetLogger("pty"),
	}
}

// Start starts command attached to a new PTY.
func (p *PTYManager) Start(command string, args []string, env []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return fmt.Errorf("process already started")
	}

	p.cmd = exec.Command(command, args...)
	p.cmd.Env = env

	var err error
	p.pty, err = pty.Start(p.cmd)
	if err != nil {
		p.cmd = nil
		return fmt.Errorf("failed to start PTY: %w", err)
	}

	if err := p.copyTerminalSize(); err != nil {
		// No controlling terminal, e.g. under a test runner.
		p.logger.Debug().Err(err).Msg("Failed to copy terminal size")
	}

	p.wg.Add(1)
	go p.monitorTerminalSize()

	return nil
}

// Wait waits for the process to exit and closes the PTY.
func (p *PTYManager) Wait() error {
	p.mu.Lock()
	cmd := p.cmd
	p.mu.Unlock()
	if cmd == nil {
		return ErrNotStarted
	}

	err := cmd.Wait()

	close(p.stopChan)
	p.wg.Wait()

	p.mu.Lock()
	if p.pty != nil {
		_ = p.pty.Close()
	}
	p.mu.Unlock()

	return err
}

// ProcessState returns the process state after Wait.
func (p *PTYManager) ProcessState() *os.ProcessState {
	if p.cmd == nil {
		return nil
	}
	return p.cmd.ProcessState
}

// Process returns the underlying process.
func (p *PTYManager) Process() *os.Process {
	if p.cmd == nil {
		return nil
	}
	return p.cmd.Process
}

// Write types p into the child's terminal.
func (p *PTYManager) Write(b []byte) (int, error) {
	p.mu.Lock()
	f := p.pty
	p.mu.Unlock()
	if f == nil {
		return 0, ErrNotStarted
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return f.Write(b)
}

// Stop restores the terminal if CopyIO put it in raw mode.
func (p *PTYManager) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.restore != nil {
		p.restore()
		p.restore = nil
	}
	return nil
}

func (p *PTYManager) copyTerminalSize() error {
	size, err := pty.GetsizeFull(os.Stdin)
	if err != nil {
		return err
	}
	return pty.Setsize(p.pty, size)
}

func (p *PTYManager) monitorTerminalSize() {
	defer p.wg.Done()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGWINCH)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-sigChan:
			p.mu.Lock()
			if p.pty != nil {
				if err := p.copyTerminalSize(); err != nil {
					p.logger.Debug().Err(err).Msg("Failed to resize PTY")
				}
			}
			p.mu.Unlock()
		case <-p.stopChan:
			return
		}
	}
}

// CopyIO connects stdin and stdout to the PTY. Every chunk of output is
// also passed to handler. When stdin is a terminal it is switched to raw
// mode until Stop.
func (p *PTYManager) CopyIO(stdin io.Reader, stdout io.Writer, handler func([]byte)) error {
	p.mu.Lock()
	if p.pty == nil {
		p.mu.Unlock()
		return ErrNotStarted
	}
	ptyFile := p.pty
	p.mu.Unlock()

	if file, ok := stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fd := int(file.Fd())
		state, err := term.MakeRaw(fd)
		if err != nil {
			p.logger.Warn().Err(err).Msg("Failed to set raw mode")
		} else {
			p.mu.Lock()
			p.restore = func() { _ = term.Restore(fd, state) }
			p.mu.Unlock()
			defer func() { _ = p.Stop() }()
		}
	}

	errChan := make(chan error, 2)
	var wg sync.WaitGroup

	// stdin may block forever; it is not waited for.
	go func() {
		if _, err := io.Copy(writerFunc(p.Write), stdin); err != nil && !errors.Is(err, os.ErrClosed) {
			errChan <- fmt.Errorf("stdin copy error: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		reader := io.Reader(ptyFile)
		if handler != nil {
			reader = &outputReader{reader: ptyFile, handler: handler}
		}
		if _, err := io.Copy(stdout, reader); err != nil && !isPTYClosed(err) {
			errChan <- fmt.Errorf("stdout copy error: %w", err)
		}
	}()

	wg.Wait()

	select {
	case err := <-errChan:
		return err
	default:
		return nil
	}
}

// isPTYClosed reports the error Linux returns when reading a PTY whose child
// has exited.
func isPTYClosed(err error) bool {
	return errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed)
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

// outputReader passes every chunk read to handler.
type outputReader struct {
	reader  io.Reader
	handler func([]byte)
}

func (r *outputReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.handler(p[:n])
	}
	return n, err
}
