// Package testutil holds hand-written mocks shared by tests.
package testutil

import (
	"sync"
	"time"

	"github.com/Veraticus/chat-notify/pkg/alert"
	"github.com/Veraticus/chat-notify/pkg/types"
)

// MockNotifier is a thread-safe alert.Notifier that records what it sends.
type MockNotifier struct {
	mu        sync.Mutex
	alerts    []alert.Alert
	attempts  []alert.Alert
	sendErr   error
	sendDelay time.Duration
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Send implements alert.Notifier.
func (m *MockNotifier) Send(a alert.Alert) error {
	m.mu.Lock()
	delay := m.sendDelay
	m.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts = append(m.attempts, a)
	if m.sendErr != nil {
		return m.sendErr
	}
	m.alerts = append(m.alerts, a)
	return nil
}

// GetAlerts returns a copy of successfully sent alerts.
func (m *MockNotifier) GetAlerts() []alert.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]alert.Alert(nil), m.alerts...)
}

// GetAttempts returns a copy of every send attempt, including failures.
func (m *MockNotifier) GetAttempts() []alert.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]alert.Alert(nil), m.attempts...)
}

// SetError sets the error to return on Send calls.
func (m *MockNotifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// SetDelay sets a delay before each Send call.
func (m *MockNotifier) SetDelay(delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendDelay = delay
}

// CountingRateLimiter allows the first N calls.
type CountingRateLimiter struct {
	mu           sync.Mutex
	maxAllowed   int
	currentCount int
}

// NewCountingRateLimiter creates a new counting rate limiter.
func NewCountingRateLimiter(maxAllowed int) *CountingRateLimiter {
	return &CountingRateLimiter{maxAllowed: maxAllowed}
}

// Allow implements interfaces.RateLimiter.
func (c *CountingRateLimiter) Allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentCount++
	return c.currentCount <= c.maxAllowed
}

// Reset implements interfaces.RateLimiter.
func (c *CountingRateLimiter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentCount = 0
}

// MockEvaluator returns a fixed outcome for chosen texts.
type MockEvaluator struct {
	mu       sync.Mutex
	outcomes map[string]*types.MatchOutcome
	events   []types.TextEvent
}

// NewMockEvaluator creates an evaluator that fires nothing until told.
func NewMockEvaluator() *MockEvaluator {
	return &MockEvaluator{outcomes: make(map[string]*types.MatchOutcome)}
}

// Fire makes events with text produce outcome.
func (m *MockEvaluator) Fire(text string, outcome *types.MatchOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[text] = outcome
}

// Evaluate implements interfaces.Evaluator.
func (m *MockEvaluator) Evaluate(event types.TextEvent) *types.MatchOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.outcomes[event.Text]
}

// Events returns every evaluated event.
func (m *MockEvaluator) Events() []types.TextEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.TextEvent(nil), m.events...)
}

// Fired pairs an event with the outcome it produced.
type Fired struct {
	Event   types.TextEvent
	Outcome *types.MatchOutcome
}

// OutcomeRecorder is an interfaces.OutcomeHandler that records calls.
type OutcomeRecorder struct {
	mu    sync.Mutex
	fired []Fired
}

// HandleOutcome implements interfaces.OutcomeHandler.
func (r *OutcomeRecorder) HandleOutcome(event types.TextEvent, outcome *types.MatchOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired = append(r.fired, Fired{Event: event, Outcome: outcome})
}

// Fired returns the recorded calls.
func (r *OutcomeRecorder) Fired() []Fired {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Fired(nil), r.fired...)
}

// MockSender records replies instead of delivering them.
type MockSender struct {
	mu   sync.Mutex
	sent []types.ScheduledResponse
	err  error
}

// Send implements response.Sender.
func (m *MockSender) Send(resp types.ScheduledResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, resp)
	return nil
}

// SetError makes every later Send fail with err.
func (m *MockSender) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Sent returns the delivered replies in order.
func (m *MockSender) Sent() []types.ScheduledResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.ScheduledResponse(nil), m.sent...)
}
