// Package monitor assembles output into lines, decodes them into text
// events and fans evaluation results out to handlers.
package monitor

import (
	"bytes"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Veraticus/chat-notify/pkg/interfaces"
	"github.com/Veraticus/chat-notify/pkg/logging"
)

// OutputMonitor evaluates every line of output against the notification
// registry.
type OutputMonitor struct {
	decoder   Decoder
	evaluator interfaces.Evaluator
	handlers  []interfaces.OutcomeHandler
	echo      interfaces.EventHandler
	logger    zerolog.Logger

	mu             sync.Mutex
	lastOutputTime time.Time
	lineBuffer     bytes.Buffer
	lines          int
	fired          int
}

// NewOutputMonitor creates a monitor. handlers run, in order, for every
// fired notification.
func NewOutputMonitor(decoder Decoder, evaluator interfaces.Evaluator, handlers ...interfaces.OutcomeHandler) *OutputMonitor {
	return &OutputMonitor{
		decoder:        decoder,
		evaluator:      evaluator,
		handlers:       handlers,
		logger:         logging.GetLogger("monitor"),
		lastOutputTime: time.Now(),
	}
}

// SetEcho installs a handler that sees every event, fired or not.
func (om *OutputMonitor) SetEcho(echo interfaces.EventHandler) {
	om.mu.Lock()
	defer om.mu.Unlock()
	om.echo = echo
}

// HandleData processes raw output data. Incomplete trailing lines are kept
// until more data or Flush arrives.
func (om *OutputMonitor) HandleData(data []byte) {
	om.mu.Lock()
	defer om.mu.Unlock()

	om.lastOutputTime = time.Now()
	om.lineBuffer.Write(data)

	buffer := om.lineBuffer.Bytes()
	start := 0
	var lines []string
	for i := 0; i < len(buffer); i++ {
		if buffer[i] == '\n' {
			lines = append(lines, string(buffer[start:i]))
			start = i + 1
		}
	}
	rest := append([]byte(nil), buffer[start:]...)
	om.lineBuffer.Reset()
	om.lineBuffer.Write(rest)

	for _, line := range lines {
		om.processLine(line)
	}
}

// HandleLine implements the OutputHandler interface.
func (om *OutputMonitor) HandleLine(line string) {
	om.mu.Lock()
	defer om.mu.Unlock()

	om.lastOutputTime = time.Now()
	om.processLine(line)
}

// Flush processes any remaining partial line.
func (om *OutputMonitor) Flush() {
	om.mu.Lock()
	defer om.mu.Unlock()

	if om.lineBuffer.Len() > 0 {
		line := om.lineBuffer.String()
		om.lineBuffer.Reset()
		om.processLine(line)
	}
}

// processLine must be called with mu held so that lines are handled in
// arrival order.
func (om *OutputMonitor) processLine(line string) {
	event, ok, err := om.decoder.Decode(line)
	if err != nil {
		om.logger.Debug().Err(err).Str("line", line).Msg("Skipping undecodable line")
		return
	}
	if !ok {
		return
	}
	om.lines++

	outcome := om.evaluator.Evaluate(event)
	if om.echo != nil {
		om.echo.HandleEvent(event, outcome)
	}
	if outcome == nil {
		return
	}
	om.fired++

	om.logger.Info().
		Str("notification", outcome.NotificationName).
		Int("index", outcome.NotificationIndex).
		Str("text", event.Text).
		Msg("Notification fired")

	for _, h := range om.handlers {
		h.HandleOutcome(event, outcome)
	}
}

// Stats returns the number of events seen and notifications fired.
func (om *OutputMonitor) Stats() (lines, fired int) {
	om.mu.Lock()
	defer om.mu.Unlock()
	return om.lines, om.fired
}

// GetLastOutputTime returns the last time output was received.
func (om *OutputMonitor) GetLastOutputTime() time.Time {
	om.mu.Lock()
	defer om.mu.Unlock()
	return om.lastOutputTime
}

// compile-time interface check
var _ interfaces.DataHandler = (*OutputMonitor)(nil)
