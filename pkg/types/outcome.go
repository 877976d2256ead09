package types

// Span is a byte range [Start, End) into TextEvent.Text.
type Span struct {
	Start int
	End   int
}

// MatchResult is the outcome of testing one trigger against one event.
type MatchResult struct {
	Hit  bool
	Span *Span
	// Groups holds regex captures, index 0 being the whole match. Nil for
	// non-regex triggers.
	Groups []string
	// TriggerIndex is the position of the winning trigger in its notification.
	TriggerIndex int
}

// ResolvedStyle is the final style for the matched span. Nil fields are unset.
type ResolvedStyle struct {
	Color         *RGB
	Bold          *bool
	Italic        *bool
	Underlined    *bool
	Strikethrough *bool
	Obfuscated    *bool
}

// ScheduledResponse is a reply to emit after DelayTicks.
type ScheduledResponse struct {
	DelayTicks int
	Payload    string
	Kind       ResponseType
}

// MatchOutcome is what the engine returns when a notification fires.
type MatchOutcome struct {
	NotificationIndex int
	NotificationName  string
	Match             MatchResult
	StyleSpan         Span
	Style             ResolvedStyle
	Sound             Sound
	Responses         []ScheduledResponse
}
