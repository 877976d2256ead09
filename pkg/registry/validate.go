package registry

import (
	"fmt"

	"github.com/Veraticus/chat-notify/pkg/matcher"
	"github.com/Veraticus/chat-notify/pkg/types"
)

// ReservedTriggers is the number of leading self-notification triggers that
// are bound to the user's names.
const ReservedTriggers = 2

// Validate checks a notification before it is published. isSelf applies the
// extra rules of index 0.
func Validate(n types.Notification, isSelf bool) error {
	if len(n.Triggers) == 0 {
		return ErrNoTriggers
	}
	if isSelf && len(n.Triggers) < ReservedTriggers {
		return fmt.Errorf("self notification needs %d name triggers: %w", ReservedTriggers, ErrNoTriggers)
	}

	for i, t := range n.Triggers {
		if err := validateTrigger(t); err != nil {
			return fmt.Errorf("trigger %d: %w", i, err)
		}
	}
	for i, t := range n.ExclusionTriggers {
		if err := validateTrigger(t); err != nil {
			return fmt.Errorf("exclusion trigger %d: %w", i, err)
		}
	}
	for i, r := range n.Responses {
		if err := validateResponse(r); err != nil {
			return fmt.Errorf("response %d: %w", i, err)
		}
	}
	for _, attr := range types.FormatAttrs {
		if err := validateFlag(n.TextStyle.Flag(attr)); err != nil {
			return fmt.Errorf("%s: %w", attr, err)
		}
	}
	return nil
}

func validateTrigger(t types.Trigger) error {
	if err := validatePattern(t.Type, t.String); err != nil {
		return err
	}
	if t.StyleTarget != nil {
		if err := validatePattern(t.StyleTarget.Type, t.StyleTarget.String); err != nil {
			return fmt.Errorf("style target: %w", err)
		}
	}
	return nil
}

func validatePattern(typ types.TriggerType, s string) error {
	switch typ {
	case types.TriggerNormal, types.TriggerKey:
		return nil
	case types.TriggerRegex:
		if s == "" {
			return nil
		}
		if _, err := matcher.CompilePattern(s); err != nil {
			return fmt.Errorf("%w %q: %v", ErrInvalidPattern, s, err)
		}
		return nil
	}
	return fmt.Errorf("%w: trigger type %d", ErrInvalidType, int(typ))
}

func validateResponse(r types.Response) error {
	switch r.Type {
	case types.ResponseMessage, types.ResponseCommand, types.ResponseCommandKeys:
	default:
		return fmt.Errorf("%w: response type %d", ErrInvalidType, int(r.Type))
	}
	if r.DelayTicks < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDelay, r.DelayTicks)
	}
	return nil
}

func validateFlag(f types.Flag) error {
	switch f {
	case types.FlagDisabled, types.FlagOn, types.FlagOff:
		return nil
	}
	return fmt.Errorf("%w: format flag %d", ErrInvalidType, int(f))
}
