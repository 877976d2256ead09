package alert

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/chat-notify/pkg/config"
	"github.com/Veraticus/chat-notify/pkg/types"
)

type recordingNotifier struct {
	mu      sync.Mutex
	alerts  []Alert
	sendErr error
}

func (r *recordingNotifier) Send(a Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
	return r.sendErr
}

func (r *recordingNotifier) sent() []Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Alert(nil), r.alerts...)
}

type fixedLimiter struct{ allow bool }

func (f *fixedLimiter) Allow() bool { return f.allow }
func (f *fixedLimiter) Reset()      {}

func unbatched() *config.Config {
	cfg := config.DefaultConfig()
	cfg.BatchWindow = 0
	return cfg
}

func TestManager_SendImmediate(t *testing.T) {
	n := &recordingNotifier{}
	m := NewManager(unbatched(), n, nil)

	require.NoError(t, m.Send(Alert{Title: "one"}))
	assert.Len(t, n.sent(), 1)
}

func TestManager_SendPropagatesError(t *testing.T) {
	n := &recordingNotifier{sendErr: errors.New("boom")}
	m := NewManager(unbatched(), n, nil)

	assert.EqualError(t, m.Send(Alert{Title: "one"}), "boom")
}

func TestManager_RateLimited(t *testing.T) {
	n := &recordingNotifier{}
	m := NewManager(unbatched(), n, &fixedLimiter{allow: false})

	require.NoError(t, m.Send(Alert{Title: "dropped"}))
	assert.Empty(t, n.sent())
}

func TestManager_Batching(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BatchWindow = time.Hour
	n := &recordingNotifier{}
	m := NewManager(cfg, n, nil)

	require.NoError(t, m.Send(Alert{Rule: "a", Message: "first"}))
	require.NoError(t, m.Send(Alert{Rule: "b", Message: "second"}))
	assert.Empty(t, n.sent())

	require.NoError(t, m.Close())
	sent := n.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "batch", sent[0].Rule)
	assert.Equal(t, "a: first\n---\nb: second", sent[0].Message)
}

func TestManager_SingleAlertBatchIsUnchanged(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BatchWindow = time.Hour
	n := &recordingNotifier{}
	m := NewManager(cfg, n, nil)

	require.NoError(t, m.Send(Alert{Rule: "a", Message: "only"}))
	require.NoError(t, m.Close())

	sent := n.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "a", sent[0].Rule)
}

func TestManager_HandleOutcome(t *testing.T) {
	n := &recordingNotifier{}
	m := NewManager(unbatched(), n, nil)
	event := types.TextEvent{Text: "urgent: help"}

	m.HandleOutcome(event, nil)
	m.HandleOutcome(event, &types.MatchOutcome{NotificationName: "silent"})
	assert.Empty(t, n.sent())

	sound := types.Sound{Enabled: true, ID: "ding", Volume: 1, Pitch: 1}
	m.HandleOutcome(event, &types.MatchOutcome{NotificationName: "urgent", Sound: sound})

	sent := n.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "chat-notify: urgent", sent[0].Title)
	assert.Equal(t, "urgent: help", sent[0].Message)
	assert.Equal(t, "urgent", sent[0].Rule)
	assert.Equal(t, sound, sent[0].Sound)
}

func TestManager_HandleOutcomeSwallowsErrors(t *testing.T) {
	n := &recordingNotifier{sendErr: errors.New("offline")}
	m := NewManager(unbatched(), n, nil)

	assert.NotPanics(t, func() {
		m.HandleOutcome(types.TextEvent{Text: "x"}, &types.MatchOutcome{Sound: types.Sound{Enabled: true}})
	})
	assert.Len(t, n.sent(), 1)
}
