package config

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/Veraticus/chat-notify/pkg/registry"
	"github.com/Veraticus/chat-notify/pkg/types"
)

// NotificationConfig is one notification as written in the file.
type NotificationConfig struct {
	Name string `yaml:"name" koanf:"name"`
	// Enabled defaults to true when omitted.
	Enabled  *bool           `yaml:"enabled,omitempty" koanf:"enabled"`
	Triggers []TriggerConfig `yaml:"triggers,omitempty" koanf:"triggers"`

	// ExclusionEnabled defaults to true when exclusions are listed.
	ExclusionEnabled *bool           `yaml:"exclusion_enabled,omitempty" koanf:"exclusion_enabled"`
	Exclusions       []TriggerConfig `yaml:"exclusions,omitempty" koanf:"exclusions"`

	// Color is "#rrggbb". Setting it turns recolouring on.
	Color         string `yaml:"color,omitempty" koanf:"color"`
	Bold          string `yaml:"bold,omitempty" koanf:"bold"`
	Italic        string `yaml:"italic,omitempty" koanf:"italic"`
	Underlined    string `yaml:"underlined,omitempty" koanf:"underlined"`
	Strikethrough string `yaml:"strikethrough,omitempty" koanf:"strikethrough"`
	Obfuscated    string `yaml:"obfuscated,omitempty" koanf:"obfuscated"`

	Sound SoundConfig `yaml:"sound,omitempty" koanf:"sound"`

	// ResponseEnabled defaults to true when responses are listed.
	ResponseEnabled *bool            `yaml:"response_enabled,omitempty" koanf:"response_enabled"`
	Responses       []ResponseConfig `yaml:"responses,omitempty" koanf:"responses"`
}

// TriggerConfig is a trigger or exclusion trigger.
type TriggerConfig struct {
	Type        string             `yaml:"type,omitempty" koanf:"type"`
	String      string             `yaml:"string" koanf:"string"`
	StyleTarget *StyleTargetConfig `yaml:"style_target,omitempty" koanf:"style_target"`
}

// StyleTargetConfig narrows the styled part of a match.
type StyleTargetConfig struct {
	Type   string `yaml:"type,omitempty" koanf:"type"`
	String string `yaml:"string" koanf:"string"`
}

// SoundConfig is carried to alerts untouched.
type SoundConfig struct {
	Enabled bool    `yaml:"enabled" koanf:"enabled"`
	ID      string  `yaml:"id,omitempty" koanf:"id"`
	Volume  float64 `yaml:"volume,omitempty" koanf:"volume"`
	Pitch   float64 `yaml:"pitch,omitempty" koanf:"pitch"`
}

// ResponseConfig is one automatic reply.
type ResponseConfig struct {
	Enabled     *bool  `yaml:"enabled,omitempty" koanf:"enabled"`
	Type        string `yaml:"type,omitempty" koanf:"type"`
	String      string `yaml:"string" koanf:"string"`
	DelayTicks  int    `yaml:"delay_ticks,omitempty" koanf:"delay_ticks"`
	RegexGroups bool   `yaml:"regex_groups,omitempty" koanf:"regex_groups"`
}

// BuildNotifications converts the file entries into registry values. The
// self names are injected as the first two triggers of entry 0, ahead of any
// triggers the file lists for it. Every result passes registry validation.
func (c *Config) BuildNotifications() ([]types.Notification, error) {
	entries := c.Notifications
	if len(entries) == 0 {
		entries = DefaultNotifications()
	}

	out := make([]types.Notification, 0, len(entries))
	for i, entry := range entries {
		n, err := entry.build()
		if err != nil {
			return nil, fmt.Errorf("notifications[%d] (%s): %w", i, entry.Name, err)
		}
		if i == 0 {
			n.Triggers = append(c.selfTriggers(), n.Triggers...)
		}
		if err := registry.Validate(n, i == 0); err != nil {
			return nil, fmt.Errorf("notifications[%d] (%s): %w", i, entry.Name, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func (c *Config) selfTriggers() []types.Trigger {
	name, display := "", ""
	if len(c.Self.Names) > 0 {
		name = c.Self.Names[0]
		display = name
	}
	if len(c.Self.Names) > 1 {
		display = c.Self.Names[1]
	}
	return []types.Trigger{
		{Type: types.TriggerNormal, String: name},
		{Type: types.TriggerNormal, String: display},
	}
}

func (e NotificationConfig) build() (types.Notification, error) {
	n := types.Notification{
		Name:             e.Name,
		Enabled:          boolOr(e.Enabled, true),
		ExclusionEnabled: boolOr(e.ExclusionEnabled, len(e.Exclusions) > 0),
		ResponseEnabled:  boolOr(e.ResponseEnabled, len(e.Responses) > 0),
		Sound: types.Sound{
			Enabled: e.Sound.Enabled,
			ID:      e.Sound.ID,
			Volume:  e.Sound.Volume,
			Pitch:   e.Sound.Pitch,
		},
	}

	var err error
	if n.Triggers, err = buildTriggers(e.Triggers); err != nil {
		return n, fmt.Errorf("triggers: %w", err)
	}
	if n.ExclusionTriggers, err = buildTriggers(e.Exclusions); err != nil {
		return n, fmt.Errorf("exclusions: %w", err)
	}
	if n.TextStyle, err = e.textStyle(); err != nil {
		return n, err
	}

	for j, r := range e.Responses {
		typ, err := types.ParseResponseType(r.Type)
		if err != nil {
			return n, fmt.Errorf("responses[%d]: %w", j, err)
		}
		n.Responses = append(n.Responses, types.Response{
			Enabled:     boolOr(r.Enabled, true),
			Type:        typ,
			String:      r.String,
			DelayTicks:  r.DelayTicks,
			RegexGroups: r.RegexGroups,
		})
	}
	return n, nil
}

func (e NotificationConfig) textStyle() (types.TextStyle, error) {
	var style types.TextStyle
	if e.Color != "" {
		rgb, err := ParseColor(e.Color)
		if err != nil {
			return style, err
		}
		style.DoColor = true
		style.Color = &rgb
	}

	flags := map[types.FormatAttr]string{
		types.Bold:          e.Bold,
		types.Italic:        e.Italic,
		types.Underlined:    e.Underlined,
		types.Strikethrough: e.Strikethrough,
		types.Obfuscated:    e.Obfuscated,
	}
	for _, attr := range types.FormatAttrs {
		f, err := types.ParseFlag(flags[attr])
		if err != nil {
			return style, fmt.Errorf("%s: %w", attr, err)
		}
		style = style.WithFlag(attr, f)
	}
	return style, nil
}

func buildTriggers(in []TriggerConfig) ([]types.Trigger, error) {
	var out []types.Trigger
	for j, t := range in {
		typ, err := types.ParseTriggerType(t.Type)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", j, err)
		}
		trigger := types.Trigger{Type: typ, String: t.String}
		if t.StyleTarget != nil {
			targetType, err := types.ParseTriggerType(t.StyleTarget.Type)
			if err != nil {
				return nil, fmt.Errorf("[%d] style_target: %w", j, err)
			}
			trigger.StyleTarget = &types.StyleTarget{Type: targetType, String: t.StyleTarget.String}
		}
		out = append(out, trigger)
	}
	return out, nil
}

// ParseColor parses a "#rgb" or "#rrggbb" colour.
func ParseColor(s string) (types.RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return types.RGB{}, fmt.Errorf("color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return types.RGB{R: r, G: g, B: b}, nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
