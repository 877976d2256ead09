// Package matcher tests triggers and exclusion triggers against text events.
package matcher

import (
	"strings"

	"github.com/Veraticus/chat-notify/pkg/logging"
	"github.com/Veraticus/chat-notify/pkg/types"
)

// Matcher evaluates triggers. It is safe for concurrent use.
type Matcher struct {
	patterns *patternCache
}

// New creates a matcher with an empty pattern cache.
func New() *Matcher {
	return &Matcher{
		patterns: newPatternCache(logging.GetLogger("matcher")),
	}
}

// Match tests a single trigger against the event.
func (m *Matcher) Match(trigger types.Trigger, event types.TextEvent) types.MatchResult {
	switch trigger.Type {
	case types.TriggerNormal:
		return m.matchNormal(trigger.String, event)
	case types.TriggerRegex:
		return m.matchRegex(trigger.String, event)
	case types.TriggerKey:
		return matchKey(trigger.String, event)
	}
	return types.MatchResult{}
}

// MatchAny returns the result of the first trigger that hits, in order.
func (m *Matcher) MatchAny(triggers []types.Trigger, event types.TextEvent) types.MatchResult {
	for i, trigger := range triggers {
		result := m.Match(trigger, event)
		if result.Hit {
			result.TriggerIndex = i
			return result
		}
	}
	return types.MatchResult{}
}

// StyleSpan returns the range that receives styling for a hit of trigger.
// A style target that does not hit falls back to the primary span.
func (m *Matcher) StyleSpan(trigger types.Trigger, primary types.MatchResult, event types.TextEvent) types.Span {
	fallback := types.Span{End: len(event.Text)}
	if primary.Span != nil {
		fallback = *primary.Span
	}

	target := trigger.StyleTarget
	if target == nil || target.String == "" {
		return fallback
	}

	result := m.Match(types.Trigger{Type: target.Type, String: target.String}, event)
	if !result.Hit || result.Span == nil {
		return fallback
	}
	return *result.Span
}

func (m *Matcher) matchNormal(needle string, event types.TextEvent) types.MatchResult {
	start, end, ok := findToken(event.Text, needle)
	if !ok {
		return types.MatchResult{}
	}
	offsets := runeOffsets(event.Text)
	return types.MatchResult{
		Hit:  true,
		Span: &types.Span{Start: offsets[start], End: offsets[end]},
	}
}

func (m *Matcher) matchRegex(pattern string, event types.TextEvent) types.MatchResult {
	if pattern == "" {
		return types.MatchResult{}
	}
	re := m.patterns.get(pattern)
	if re == nil {
		return types.MatchResult{}
	}

	match, err := re.FindStringMatch(event.Text)
	if err != nil || match == nil {
		// err is a match timeout.
		return types.MatchResult{}
	}

	offsets := runeOffsets(event.Text)
	groups := match.Groups()
	captured := make([]string, len(groups))
	for i, g := range groups {
		if len(g.Captures) > 0 {
			captured[i] = g.String()
		}
	}

	return types.MatchResult{
		Hit: true,
		Span: &types.Span{
			Start: offsets[match.Index],
			End:   offsets[match.Index+match.Length],
		},
		Groups: captured,
	}
}

// matchKey compares the namespace against the translation key. A trailing
// dot is optional: "death." and "death" both match "death" and anything
// nested below it, but not "deathmatch".
func matchKey(namespace string, event types.TextEvent) types.MatchResult {
	if event.TranslationKey == "" {
		return types.MatchResult{}
	}
	ns := strings.TrimSuffix(namespace, ".")
	if ns == "" {
		return types.MatchResult{}
	}
	key := event.TranslationKey
	if key != ns && !strings.HasPrefix(key, ns+".") {
		return types.MatchResult{}
	}
	return types.MatchResult{
		Hit:  true,
		Span: &types.Span{Start: 0, End: len(event.Text)},
	}
}
