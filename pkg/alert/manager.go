package alert

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Veraticus/chat-notify/pkg/config"
	"github.com/Veraticus/chat-notify/pkg/interfaces"
	"github.com/Veraticus/chat-notify/pkg/logging"
	"github.com/Veraticus/chat-notify/pkg/types"
)

// Manager orchestrates alert sending with batching and rate limiting.
type Manager struct {
	notifier    Notifier
	rateLimiter interfaces.RateLimiter
	batcher     *Batcher
	logger      zerolog.Logger

	mu sync.Mutex
}

// NewManager creates a new alert manager. A nil rate limiter allows every
// alert.
func NewManager(cfg *config.Config, notifier Notifier, rateLimiter interfaces.RateLimiter) *Manager {
	m := &Manager{
		notifier:    notifier,
		rateLimiter: rateLimiter,
		logger:      logging.GetLogger("alert"),
	}

	if cfg.BatchWindow > 0 {
		m.batcher = NewBatcher(cfg.BatchWindow, m.sendBatch)
	}

	return m
}

// Send sends or batches an alert based on configuration.
func (m *Manager) Send(alert Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rateLimiter != nil && !m.rateLimiter.Allow() {
		m.logger.Debug().Str("rule", alert.Rule).Msg("Alert dropped by rate limit")
		return nil
	}

	if m.batcher != nil {
		m.batcher.Add(alert)
		return nil
	}

	return m.notifier.Send(alert)
}

// HandleOutcome sends an alert when the fired notification has its sound
// enabled. Failures are logged; alerts are best effort.
func (m *Manager) HandleOutcome(event types.TextEvent, outcome *types.MatchOutcome) {
	if outcome == nil || !outcome.Sound.Enabled {
		return
	}
	if err := m.Send(FromOutcome(event, outcome)); err != nil {
		m.logger.Warn().Err(err).Str("rule", outcome.NotificationName).Msg("Failed to send alert")
	}
}

func (m *Manager) sendBatch(alerts []Alert) {
	if len(alerts) == 0 {
		return
	}
	if len(alerts) == 1 {
		m.deliver(alerts[0])
		return
	}

	m.deliver(Alert{
		Title:   "chat-notify: multiple matches",
		Message: formatBatchMessage(alerts),
		Time:    time.Now(),
		Rule:    "batch",
		Sound:   alerts[len(alerts)-1].Sound,
	})
}

func (m *Manager) deliver(alert Alert) {
	if err := m.notifier.Send(alert); err != nil {
		m.logger.Warn().Err(err).Str("rule", alert.Rule).Msg("Failed to send alert")
	}
}

// Close flushes any pending batch.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.batcher != nil {
		m.batcher.Flush()
	}
	return nil
}

func formatBatchMessage(alerts []Alert) string {
	var b strings.Builder
	for i, a := range alerts {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		b.WriteString(a.Rule)
		b.WriteString(": ")
		b.WriteString(a.Message)
	}
	return b.String()
}
