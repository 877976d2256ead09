package registry

import (
	"fmt"

	"github.com/Veraticus/chat-notify/pkg/types"
)

// SetSelfNames rebinds the reserved triggers of the self notification.
func (r *Registry) SetSelfNames(name, displayName string) error {
	return r.update("set self names", 0, func(n *types.Notification) error {
		n.Triggers[0] = types.Trigger{Type: types.TriggerNormal, String: name}
		n.Triggers[1] = types.Trigger{Type: types.TriggerNormal, String: displayName}
		return nil
	})
}

func (r *Registry) SetName(index int, name string) error {
	return r.update("rename", index, func(n *types.Notification) error {
		n.Name = name
		return nil
	})
}

func (r *Registry) SetEnabled(index int, enabled bool) error {
	return r.update("set enabled", index, func(n *types.Notification) error {
		n.Enabled = enabled
		return nil
	})
}

func (r *Registry) SetExclusionEnabled(index int, enabled bool) error {
	return r.update("set exclusion enabled", index, func(n *types.Notification) error {
		n.ExclusionEnabled = enabled
		return nil
	})
}

func (r *Registry) SetResponseEnabled(index int, enabled bool) error {
	return r.update("set response enabled", index, func(n *types.Notification) error {
		n.ResponseEnabled = enabled
		return nil
	})
}

func (r *Registry) SetDoColor(index int, doColor bool) error {
	return r.update("set color toggle", index, func(n *types.Notification) error {
		n.TextStyle.DoColor = doColor
		return nil
	})
}

// SetColor sets the notification colour; nil clears it.
func (r *Registry) SetColor(index int, color *types.RGB) error {
	return r.update("set color", index, func(n *types.Notification) error {
		if color == nil {
			n.TextStyle.Color = nil
			return nil
		}
		c := *color
		n.TextStyle.Color = &c
		return nil
	})
}

// SetFormat sets one tri-state format flag.
func (r *Registry) SetFormat(index int, attr types.FormatAttr, flag types.Flag) error {
	return r.update("set format", index, func(n *types.Notification) error {
		n.TextStyle = n.TextStyle.WithFlag(attr, flag)
		return nil
	})
}

func (r *Registry) SetSound(index int, sound types.Sound) error {
	return r.update("set sound", index, func(n *types.Notification) error {
		n.Sound = sound
		return nil
	})
}

// reservedTrigger reports whether trigger position j is system managed.
func reservedTrigger(index, j int) bool {
	return index == 0 && j < ReservedTriggers
}

func (r *Registry) AddTrigger(index int, t types.Trigger) error {
	return r.update("add trigger", index, func(n *types.Notification) error {
		n.Triggers = append(n.Triggers, t)
		return nil
	})
}

// SetTrigger replaces trigger j.
func (r *Registry) SetTrigger(index, j int, t types.Trigger) error {
	return r.update("set trigger", index, func(n *types.Notification) error {
		if reservedTrigger(index, j) {
			return ErrReservedTrigger
		}
		if err := checkIndex(j, len(n.Triggers)); err != nil {
			return fmt.Errorf("trigger: %w", err)
		}
		n.Triggers[j] = t
		return nil
	})
}

func (r *Registry) RemoveTrigger(index, j int) error {
	return r.update("remove trigger", index, func(n *types.Notification) error {
		if reservedTrigger(index, j) {
			return ErrReservedTrigger
		}
		triggers, err := removeItem(n.Triggers, j)
		if err != nil {
			return fmt.Errorf("trigger: %w", err)
		}
		n.Triggers = triggers
		return nil
	})
}

func (r *Registry) MoveTrigger(index, from, to int) error {
	return r.update("move trigger", index, func(n *types.Notification) error {
		if reservedTrigger(index, from) || reservedTrigger(index, to) {
			return ErrReservedTrigger
		}
		triggers, err := moveInList(n.Triggers, from, to)
		if err != nil {
			return fmt.Errorf("trigger: %w", err)
		}
		n.Triggers = triggers
		return nil
	})
}

func (r *Registry) AddExclusion(index int, t types.Trigger) error {
	return r.update("add exclusion", index, func(n *types.Notification) error {
		n.ExclusionTriggers = append(n.ExclusionTriggers, t)
		return nil
	})
}

func (r *Registry) RemoveExclusion(index, j int) error {
	return r.update("remove exclusion", index, func(n *types.Notification) error {
		triggers, err := removeItem(n.ExclusionTriggers, j)
		if err != nil {
			return fmt.Errorf("exclusion: %w", err)
		}
		n.ExclusionTriggers = triggers
		return nil
	})
}

func (r *Registry) MoveExclusion(index, from, to int) error {
	return r.update("move exclusion", index, func(n *types.Notification) error {
		triggers, err := moveInList(n.ExclusionTriggers, from, to)
		if err != nil {
			return fmt.Errorf("exclusion: %w", err)
		}
		n.ExclusionTriggers = triggers
		return nil
	})
}

func (r *Registry) AddResponse(index int, resp types.Response) error {
	return r.update("add response", index, func(n *types.Notification) error {
		n.Responses = append(n.Responses, resp)
		return nil
	})
}

func (r *Registry) RemoveResponse(index, j int) error {
	return r.update("remove response", index, func(n *types.Notification) error {
		responses, err := removeItem(n.Responses, j)
		if err != nil {
			return fmt.Errorf("response: %w", err)
		}
		n.Responses = responses
		return nil
	})
}

func (r *Registry) MoveResponse(index, from, to int) error {
	return r.update("move response", index, func(n *types.Notification) error {
		responses, err := moveInList(n.Responses, from, to)
		if err != nil {
			return fmt.Errorf("response: %w", err)
		}
		n.Responses = responses
		return nil
	})
}

// editResponse applies fn to response j of notification index.
func (r *Registry) editResponse(op string, index, j int, fn func(*types.Response)) error {
	return r.update(op, index, func(n *types.Notification) error {
		if err := checkIndex(j, len(n.Responses)); err != nil {
			return fmt.Errorf("response: %w", err)
		}
		fn(&n.Responses[j])
		return nil
	})
}

// SetResponseDelay sets the delay of response j in ticks. Negative delays
// are rejected.
func (r *Registry) SetResponseDelay(index, j, ticks int) error {
	return r.editResponse("set response delay", index, j, func(resp *types.Response) {
		resp.DelayTicks = ticks
	})
}

func (r *Registry) SetResponseRegexGroups(index, j int, regexGroups bool) error {
	return r.editResponse("set response regex groups", index, j, func(resp *types.Response) {
		resp.RegexGroups = regexGroups
	})
}

func (r *Registry) SetResponseActive(index, j int, enabled bool) error {
	return r.editResponse("set response active", index, j, func(resp *types.Response) {
		resp.Enabled = enabled
	})
}
