package types

import "fmt"

// TriggerType selects how a trigger string is tested.
type TriggerType int

const (
	// TriggerNormal is a case-insensitive whole-token search.
	TriggerNormal TriggerType = iota
	// TriggerRegex is a regular expression search.
	TriggerRegex
	// TriggerKey compares against the event's translation key.
	TriggerKey
)

func (t TriggerType) String() string {
	switch t {
	case TriggerNormal:
		return "normal"
	case TriggerRegex:
		return "regex"
	case TriggerKey:
		return "key"
	}
	return fmt.Sprintf("TriggerType(%d)", int(t))
}

// ParseTriggerType parses normal, regex or key. The empty string is normal.
func ParseTriggerType(s string) (TriggerType, error) {
	switch s {
	case "", "normal":
		return TriggerNormal, nil
	case "regex":
		return TriggerRegex, nil
	case "key":
		return TriggerKey, nil
	}
	return TriggerNormal, fmt.Errorf("unknown trigger type %q (use normal/regex/key)", s)
}

// StyleTarget narrows which part of the text receives styling.
type StyleTarget struct {
	Type   TriggerType
	String string
}

// Trigger is one test condition. Exclusion triggers use the same type.
type Trigger struct {
	Type        TriggerType
	String      string
	StyleTarget *StyleTarget
}

// ResponseType is the kind of automatic reply.
type ResponseType int

const (
	ResponseMessage ResponseType = iota
	ResponseCommand
	// ResponseCommandKeys simulates a key press given as "key1-key2".
	ResponseCommandKeys
)

func (r ResponseType) String() string {
	switch r {
	case ResponseMessage:
		return "message"
	case ResponseCommand:
		return "command"
	case ResponseCommandKeys:
		return "commandkeys"
	}
	return fmt.Sprintf("ResponseType(%d)", int(r))
}

// ParseResponseType parses message, command or commandkeys.
func ParseResponseType(s string) (ResponseType, error) {
	switch s {
	case "", "message":
		return ResponseMessage, nil
	case "command":
		return ResponseCommand, nil
	case "commandkeys":
		return ResponseCommandKeys, nil
	}
	return ResponseMessage, fmt.Errorf("unknown response type %q (use message/command/commandkeys)", s)
}

// Response is one automatic reply attached to a notification.
type Response struct {
	Enabled     bool
	Type        ResponseType
	String      string
	DelayTicks  int
	RegexGroups bool
}

// Sound describes the alert sound. The matching core never interprets it.
type Sound struct {
	Enabled bool
	ID      string
	Volume  float64
	Pitch   float64
}

// Notification is one rule: triggers, exclusions, style, sound and responses.
type Notification struct {
	Name              string
	Enabled           bool
	Triggers          []Trigger
	ExclusionEnabled  bool
	ExclusionTriggers []Trigger
	TextStyle         TextStyle
	Sound             Sound
	ResponseEnabled   bool
	Responses         []Response
}

// Clone returns a deep copy so that edits never reach a published snapshot.
func (n Notification) Clone() Notification {
	c := n
	c.Triggers = cloneTriggers(n.Triggers)
	c.ExclusionTriggers = cloneTriggers(n.ExclusionTriggers)
	if n.Responses != nil {
		c.Responses = append([]Response(nil), n.Responses...)
	}
	if n.TextStyle.Color != nil {
		col := *n.TextStyle.Color
		c.TextStyle.Color = &col
	}
	return c
}

func cloneTriggers(in []Trigger) []Trigger {
	if in == nil {
		return nil
	}
	out := make([]Trigger, len(in))
	for i, t := range in {
		out[i] = t
		if t.StyleTarget != nil {
			st := *t.StyleTarget
			out[i].StyleTarget = &st
		}
	}
	return out
}
