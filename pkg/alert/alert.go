// Package alert delivers push alerts for fired notifications.
package alert

import (
	"fmt"
	"time"

	"github.com/Veraticus/chat-notify/pkg/types"
)

// Alert is a push message describing one fired notification.
type Alert struct {
	Title   string
	Message string
	Time    time.Time
	// Rule is the name of the notification that fired.
	Rule string
	// Sound is carried through untouched for clients that play it.
	Sound types.Sound
}

// Notifier sends alerts.
type Notifier interface {
	Send(alert Alert) error
}

// FromOutcome builds the alert for a fired notification.
func FromOutcome(event types.TextEvent, outcome *types.MatchOutcome) Alert {
	title := "chat-notify"
	if outcome.NotificationName != "" {
		title = fmt.Sprintf("chat-notify: %s", outcome.NotificationName)
	}
	return Alert{
		Title:   title,
		Message: event.Text,
		Time:    time.Now(),
		Rule:    outcome.NotificationName,
		Sound:   outcome.Sound,
	}
}
