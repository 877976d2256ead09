package testutil

import (
	"errors"
	"testing"

	"github.com/Veraticus/chat-notify/pkg/alert"
	"github.com/Veraticus/chat-notify/pkg/types"
)

func TestMockNotifier(t *testing.T) {
	t.Run("successful send", func(t *testing.T) {
		mock := NewMockNotifier()

		if err := mock.Send(alert.Alert{Title: "Test"}); err != nil {
			t.Errorf("Send() error = %v, want nil", err)
		}
		if got := len(mock.GetAlerts()); got != 1 {
			t.Errorf("GetAlerts() returned %d, want 1", got)
		}
		if got := len(mock.GetAttempts()); got != 1 {
			t.Errorf("GetAttempts() returned %d, want 1", got)
		}
	})

	t.Run("send with error", func(t *testing.T) {
		mock := NewMockNotifier()
		mockErr := errors.New("test error")
		mock.SetError(mockErr)

		if err := mock.Send(alert.Alert{Title: "Test"}); err != mockErr {
			t.Errorf("Send() error = %v, want %v", err, mockErr)
		}
		if got := len(mock.GetAlerts()); got != 0 {
			t.Errorf("GetAlerts() returned %d, want 0", got)
		}
		if got := len(mock.GetAttempts()); got != 1 {
			t.Errorf("GetAttempts() returned %d, want 1", got)
		}
	})
}

func TestCountingRateLimiter(t *testing.T) {
	limiter := NewCountingRateLimiter(2)

	if !limiter.Allow() || !limiter.Allow() {
		t.Fatal("first two calls should be allowed")
	}
	if limiter.Allow() {
		t.Error("third call should be denied")
	}

	limiter.Reset()
	if !limiter.Allow() {
		t.Error("After reset: Allow() = false, want true")
	}
}

func TestMockEvaluator(t *testing.T) {
	m := NewMockEvaluator()
	want := &types.MatchOutcome{NotificationName: "urgent"}
	m.Fire("urgent", want)

	if got := m.Evaluate(types.TextEvent{Text: "calm"}); got != nil {
		t.Errorf("Evaluate(calm) = %v, want nil", got)
	}
	if got := m.Evaluate(types.TextEvent{Text: "urgent"}); got != want {
		t.Errorf("Evaluate(urgent) = %v, want %v", got, want)
	}
	if got := len(m.Events()); got != 2 {
		t.Errorf("Events() returned %d, want 2", got)
	}
}

func TestOutcomeRecorder(t *testing.T) {
	var r OutcomeRecorder
	r.HandleOutcome(types.TextEvent{Text: "a"}, &types.MatchOutcome{NotificationIndex: 1})

	fired := r.Fired()
	if len(fired) != 1 || fired[0].Event.Text != "a" || fired[0].Outcome.NotificationIndex != 1 {
		t.Errorf("Fired() = %+v", fired)
	}
}

func TestMockSender(t *testing.T) {
	var s MockSender
	if err := s.Send(types.ScheduledResponse{Payload: "hi"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	s.SetError(errors.New("closed"))
	if err := s.Send(types.ScheduledResponse{Payload: "lost"}); err == nil {
		t.Error("Send() error = nil after SetError")
	}

	sent := s.Sent()
	if len(sent) != 1 || sent[0].Payload != "hi" {
		t.Errorf("Sent() = %+v", sent)
	}
}
