package response

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Veraticus/chat-notify/pkg/types"
)

// ErrUnsupportedKind is returned by senders that cannot deliver a kind.
var ErrUnsupportedKind = errors.New("response kind not supported by sender")

// InputSender types replies into an interactive program's input, such as
// the PTY of a wrapped chat client.
type InputSender struct {
	mu sync.Mutex
	w  io.Writer
}

// NewInputSender creates a sender writing to w.
func NewInputSender(w io.Writer) *InputSender {
	return &InputSender{w: w}
}

// Send writes the payload followed by a carriage return. Commands get a
// leading slash if they lack one.
func (s *InputSender) Send(resp types.ScheduledResponse) error {
	var line string
	switch resp.Kind {
	case types.ResponseMessage:
		line = resp.Payload
	case types.ResponseCommand:
		line = resp.Payload
		if !strings.HasPrefix(line, "/") {
			line = "/" + line
		}
	case types.ResponseCommandKeys:
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, resp.Kind)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, resp.Kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.WriteString(s.w, line+"\r"); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// LogSender reports reply intents as text lines instead of delivering them.
type LogSender struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLogSender creates a sender printing to w.
func NewLogSender(w io.Writer) *LogSender {
	return &LogSender{w: w}
}

// Send prints the reply.
func (s *LogSender) Send(resp types.ScheduledResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "[response %s +%dt] %s\n", resp.Kind, resp.DelayTicks, resp.Payload)
	return err
}
