// Package response turns a fired notification's reply list into timed
// payloads and realizes them.
package response

import (
	"strconv"

	"github.com/dlclark/regexp2"

	"github.com/Veraticus/chat-notify/pkg/types"
)

// groupRef matches "(N)" with ASCII digits.
var groupRef = regexp2.MustCompile(`\(([0-9]+)\)`, regexp2.None)

// Schedule builds the replies for a fired notification in configuration
// order. Disabled replies are skipped; delays are copied verbatim.
func Schedule(n types.Notification, match types.MatchResult) []types.ScheduledResponse {
	if !n.ResponseEnabled || len(n.Responses) == 0 {
		return nil
	}

	scheduled := make([]types.ScheduledResponse, 0, len(n.Responses))
	for _, r := range n.Responses {
		if !r.Enabled {
			continue
		}
		scheduled = append(scheduled, types.ScheduledResponse{
			DelayTicks: r.DelayTicks,
			Payload:    payload(r, match.Groups),
			Kind:       r.Type,
		})
	}
	return scheduled
}

func payload(r types.Response, groups []string) string {
	switch r.Type {
	case types.ResponseCommandKeys:
		return r.String
	case types.ResponseMessage, types.ResponseCommand:
		if r.RegexGroups && groups != nil {
			return Substitute(r.String, groups)
		}
		return r.String
	}
	return r.String
}

// Substitute replaces each "(N)" in template with groups[N]. References
// outside the captured range stay as written.
func Substitute(template string, groups []string) string {
	out, err := groupRef.ReplaceFunc(template, func(m regexp2.Match) string {
		digits := m.GroupByNumber(1).String()
		n, err := strconv.Atoi(digits)
		if err != nil || n >= len(groups) {
			return m.String()
		}
		return groups[n]
	}, -1, -1)
	if err != nil {
		return template
	}
	return out
}
