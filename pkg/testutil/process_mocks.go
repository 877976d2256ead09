package testutil

import (
	"bytes"
	"io"
	"os"
	"sync"
)

// MockPTY is a scripted pseudo-terminal for process tests. CopyIO replays
// the configured output chunks and Write records input.
type MockPTY struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	waited   bool
	command  string
	args     []string
	env      []string
	output   [][]byte
	input    bytes.Buffer
	startErr error
	waitErr  error
	process  *os.Process
}

// NewMockPTY creates a mock that will emit output when CopyIO runs.
func NewMockPTY(output ...string) *MockPTY {
	m := &MockPTY{}
	for _, o := range output {
		m.output = append(m.output, []byte(o))
	}
	return m
}

// Start records the command.
func (m *MockPTY) Start(command string, args []string, env []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.startErr != nil {
		return m.startErr
	}
	m.started = true
	m.command = command
	m.args = args
	m.env = env
	return nil
}

// Wait returns the configured wait error.
func (m *MockPTY) Wait() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waited = true
	return m.waitErr
}

// ProcessState always returns nil.
func (m *MockPTY) ProcessState() *os.ProcessState { return nil }

// Process returns the configured process, nil by default.
func (m *MockPTY) Process() *os.Process {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.process
}

// CopyIO writes each output chunk to stdout and hands it to handler.
func (m *MockPTY) CopyIO(_ io.Reader, stdout io.Writer, handler func([]byte)) error {
	m.mu.Lock()
	output := m.output
	m.mu.Unlock()

	for _, chunk := range output {
		if _, err := stdout.Write(chunk); err != nil {
			return err
		}
		if handler != nil {
			handler(chunk)
		}
	}
	return nil
}

// Write records input sent to the child.
func (m *MockPTY) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.input.Write(p)
}

// Stop records that the terminal was restored.
func (m *MockPTY) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

// SetStartError sets the error returned by Start.
func (m *MockPTY) SetStartError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startErr = err
}

// SetWaitError sets the error returned by Wait.
func (m *MockPTY) SetWaitError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waitErr = err
}

// Input returns everything written to the child.
func (m *MockPTY) Input() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.input.String()
}

// Env returns the environment passed to Start.
func (m *MockPTY) Env() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.env...)
}

// IsStarted reports whether Start succeeded.
func (m *MockPTY) IsStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// IsStopped reports whether Stop was called.
func (m *MockPTY) IsStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// IsWaited reports whether Wait was called.
func (m *MockPTY) IsWaited() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waited
}
