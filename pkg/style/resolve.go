// Package style merges notification styles into event styles and renders the
// result on a terminal.
package style

import "github.com/Veraticus/chat-notify/pkg/types"

// Resolve merges a notification's declared style with the event's existing
// style. Each attribute is resolved on its own: colour comes from the
// notification only when DoColor is set, and a disabled flag keeps whatever
// the event already had, including nothing.
func Resolve(declared types.TextStyle, existing *types.Style) types.ResolvedStyle {
	var base types.Style
	if existing != nil {
		base = *existing
	}

	resolved := types.ResolvedStyle{
		Color:         base.Color,
		Bold:          resolveFlag(declared.Bold, base.Bold),
		Italic:        resolveFlag(declared.Italic, base.Italic),
		Underlined:    resolveFlag(declared.Underlined, base.Underlined),
		Strikethrough: resolveFlag(declared.Strikethrough, base.Strikethrough),
		Obfuscated:    resolveFlag(declared.Obfuscated, base.Obfuscated),
	}
	if declared.DoColor {
		resolved.Color = declared.Color
	}
	return resolved
}

func resolveFlag(flag types.Flag, inherited *bool) *bool {
	switch flag {
	case types.FlagOn:
		return boolPtr(true)
	case types.FlagOff:
		return boolPtr(false)
	case types.FlagDisabled:
		return inherited
	}
	return inherited
}

func boolPtr(b bool) *bool {
	return &b
}
