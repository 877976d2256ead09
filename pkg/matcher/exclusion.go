package matcher

import "github.com/Veraticus/chat-notify/pkg/types"

// IsExcluded reports whether any of the notification's exclusion triggers
// hits the event. Exclusions only apply when enabled.
func (m *Matcher) IsExcluded(n types.Notification, event types.TextEvent) bool {
	if !n.ExclusionEnabled {
		return false
	}
	for _, trigger := range n.ExclusionTriggers {
		if m.Match(trigger, event).Hit {
			return true
		}
	}
	return false
}
