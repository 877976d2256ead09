package process

import (
	"bytes"
	"errors"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
)

func skipWithoutPTY(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" || os.Getenv("CI") == "true" {
		t.Skip("PTY tests require Unix environment")
	}
}

// syncBuffer is a bytes.Buffer safe for the copy goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestPTYManager_CopyIO(t *testing.T) {
	skipWithoutPTY(t)

	ptyMgr := NewPTYManager()
	if err := ptyMgr.Start("echo", []string{"hello world"}, os.Environ()); err != nil {
		t.Fatalf("failed to start: %v", err)
	}

	output := &syncBuffer{}
	handled := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- ptyMgr.CopyIO(strings.NewReader(""), output, func(data []byte) {
			_, _ = handled.Write(data)
		})
	}()

	waitFor(t, func() bool { return strings.Contains(handled.String(), "hello world") })

	if err := ptyMgr.Wait(); err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("CopyIO did not complete in time")
	}

	if !strings.Contains(output.String(), "hello world") {
		t.Errorf("stdout = %q, want it to contain hello world", output.String())
	}
	if ptyMgr.ProcessState() == nil {
		t.Error("ProcessState is nil")
	}
}

func TestPTYManager_Write(t *testing.T) {
	skipWithoutPTY(t)

	ptyMgr := NewPTYManager()
	if err := ptyMgr.Start("cat", nil, os.Environ()); err != nil {
		t.Fatalf("failed to start: %v", err)
	}

	output := &syncBuffer{}
	go func() {
		_ = ptyMgr.CopyIO(strings.NewReader(""), output, nil)
	}()

	if _, err := ptyMgr.Write([]byte("ping\r")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	waitFor(t, func() bool { return strings.Contains(output.String(), "ping") })

	_ = ptyMgr.Process().Signal(syscall.SIGTERM)
	_ = ptyMgr.Wait()
}

func TestPTYManager_StartErrors(t *testing.T) {
	tests := []struct {
		name    string
		command string
		wantErr bool
	}{
		{name: "invalid command", command: "/nonexistent/command", wantErr: true},
		{name: "valid command", command: "true", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skipWithoutPTY(t)

			ptyMgr := NewPTYManager()
			err := ptyMgr.Start(tt.command, nil, os.Environ())

			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			_ = ptyMgr.Wait()
		})
	}
}

func TestPTYManager_DoubleStart(t *testing.T) {
	skipWithoutPTY(t)

	ptyMgr := NewPTYManager()
	if err := ptyMgr.Start("sleep", []string{"1"}, os.Environ()); err != nil {
		t.Fatalf("first start failed: %v", err)
	}

	err := ptyMgr.Start("echo", []string{"test"}, os.Environ())
	if err == nil || !strings.Contains(err.Error(), "already started") {
		t.Errorf("second start error = %v, want already started", err)
	}

	_ = ptyMgr.Process().Signal(syscall.SIGTERM)
	_ = ptyMgr.Wait()
}

func TestPTYManager_NotStarted(t *testing.T) {
	ptyMgr := NewPTYManager()

	if err := ptyMgr.Wait(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Wait() error = %v, want ErrNotStarted", err)
	}
	if _, err := ptyMgr.Write([]byte("x")); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Write() error = %v, want ErrNotStarted", err)
	}
	if err := ptyMgr.CopyIO(strings.NewReader(""), io.Discard, nil); !errors.Is(err, ErrNotStarted) {
		t.Errorf("CopyIO() error = %v, want ErrNotStarted", err)
	}
	if ptyMgr.Process() != nil {
		t.Error("Process should be nil before start")
	}
	if ptyMgr.ProcessState() != nil {
		t.Error("ProcessState should be nil before start")
	}
	if err := ptyMgr.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestOutputReader(t *testing.T) {
	var calls [][]byte
	reader := &outputReader{
		reader: strings.NewReader("test data"),
		handler: func(data []byte) {
			calls = append(calls, append([]byte(nil), data...))
		},
	}

	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "test data" {
		t.Errorf("read %q, want test data", got)
	}
	if len(calls) != 1 || string(calls[0]) != "test data" {
		t.Errorf("handler calls = %q", calls)
	}
}
