// Package interfaces defines the core interfaces used throughout the application.
package interfaces

import (
	"github.com/Veraticus/chat-notify/pkg/registry"
	"github.com/Veraticus/chat-notify/pkg/types"
)

// OutputHandler processes output lines.
type OutputHandler interface {
	HandleLine(line string)
}

// DataHandler processes raw output data.
type DataHandler interface {
	OutputHandler
	HandleData(data []byte)
}

// RateLimiter limits alert frequency.
type RateLimiter interface {
	Allow() bool
	Reset()
}

// SnapshotSource provides the current registry view.
type SnapshotSource interface {
	Snapshot() *registry.Snapshot
}

// Evaluator decides whether a notification fires for an event.
type Evaluator interface {
	Evaluate(event types.TextEvent) *types.MatchOutcome
}

// OutcomeHandler reacts to a fired notification.
type OutcomeHandler interface {
	HandleOutcome(event types.TextEvent, outcome *types.MatchOutcome)
}

// EventHandler sees every decoded event. outcome is nil when nothing fired.
type EventHandler interface {
	HandleEvent(event types.TextEvent, outcome *types.MatchOutcome)
}
