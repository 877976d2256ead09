// Package engine decides which notification, if any, fires for a text event.
package engine

import (
	"github.com/rs/zerolog"

	"github.com/Veraticus/chat-notify/pkg/interfaces"
	"github.com/Veraticus/chat-notify/pkg/logging"
	"github.com/Veraticus/chat-notify/pkg/matcher"
	"github.com/Veraticus/chat-notify/pkg/registry"
	"github.com/Veraticus/chat-notify/pkg/response"
	"github.com/Veraticus/chat-notify/pkg/style"
	"github.com/Veraticus/chat-notify/pkg/types"
)

// Options holds evaluation policy supplied by configuration.
type Options struct {
	// AllowSelfMessages lets self-originated events be matched.
	AllowSelfMessages bool
}

// Engine evaluates events against registry snapshots. Evaluation never
// writes shared state, so Evaluate may be called from many goroutines.
type Engine struct {
	source  interfaces.SnapshotSource
	matcher *matcher.Matcher
	opts    Options
	logger  zerolog.Logger
}

// New creates an engine reading snapshots from source.
func New(source interfaces.SnapshotSource, m *matcher.Matcher, opts Options) *Engine {
	if m == nil {
		m = matcher.New()
	}
	return &Engine{
		source:  source,
		matcher: m,
		opts:    opts,
		logger:  logging.GetLogger("engine"),
	}
}

// Evaluate takes one snapshot and evaluates the event against it. It
// returns nil when no notification fires.
func (e *Engine) Evaluate(event types.TextEvent) *types.MatchOutcome {
	return e.EvaluateSnapshot(e.source.Snapshot(), event)
}

// EvaluateSnapshot walks the snapshot in priority order. The first enabled
// notification whose triggers hit and whose exclusions do not wins; an
// excluded candidate is skipped and the walk continues.
func (e *Engine) EvaluateSnapshot(snap *registry.Snapshot, event types.TextEvent) *types.MatchOutcome {
	if snap == nil {
		return nil
	}
	if event.SelfOriginated && !e.opts.AllowSelfMessages {
		return nil
	}

	for i := 0; i < snap.Len(); i++ {
		n := snap.At(i)
		if !n.Enabled {
			continue
		}

		result := e.matcher.MatchAny(n.Triggers, event)
		if !result.Hit {
			continue
		}

		if e.matcher.IsExcluded(n, event) {
			e.logger.Debug().Int("notification", i).Str("name", n.Name).Msg("Match suppressed by exclusion")
			continue
		}

		return e.outcome(i, n, result, event)
	}
	return nil
}

func (e *Engine) outcome(index int, n types.Notification, result types.MatchResult, event types.TextEvent) *types.MatchOutcome {
	winner := n.Triggers[result.TriggerIndex]
	outcome := &types.MatchOutcome{
		NotificationIndex: index,
		NotificationName:  n.Name,
		Match:             result,
		StyleSpan:         e.matcher.StyleSpan(winner, result, event),
		Style:             style.Resolve(n.TextStyle, event.Style),
		Sound:             n.Sound,
		Responses:         response.Schedule(n, result),
	}

	e.logger.Debug().
		Int("notification", index).
		Str("name", n.Name).
		Int("trigger", result.TriggerIndex).
		Int("responses", len(outcome.Responses)).
		Msg("Notification fired")

	return outcome
}
