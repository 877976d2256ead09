// Package types contains shared data structures used across the application.
package types

import "fmt"

// RGB is a 24-bit colour.
type RGB struct {
	R, G, B uint8
}

// Hex returns the colour as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Style is the style a text event already carries. Nil fields are unset.
type Style struct {
	Color         *RGB  `json:"color,omitempty"`
	Bold          *bool `json:"bold,omitempty"`
	Italic        *bool `json:"italic,omitempty"`
	Underlined    *bool `json:"underlined,omitempty"`
	Strikethrough *bool `json:"strikethrough,omitempty"`
	Obfuscated    *bool `json:"obfuscated,omitempty"`
}

// TextEvent is one incoming line of chat.
type TextEvent struct {
	Text string
	// TranslationKey identifies the message template, if the host knows it.
	TranslationKey string
	Style          *Style
	// SelfOriginated marks lines sent by the local user.
	SelfOriginated bool
}

// Flag is a tri-state format setting.
type Flag int

const (
	// FlagDisabled inherits the event's existing value.
	FlagDisabled Flag = iota
	FlagOn
	FlagOff
)

// String returns the configuration name of the flag.
func (f Flag) String() string {
	switch f {
	case FlagDisabled:
		return "disabled"
	case FlagOn:
		return "on"
	case FlagOff:
		return "off"
	}
	return fmt.Sprintf("Flag(%d)", int(f))
}

// ParseFlag parses on, off or disabled. The empty string is disabled.
func ParseFlag(s string) (Flag, error) {
	switch s {
	case "", "disabled":
		return FlagDisabled, nil
	case "on":
		return FlagOn, nil
	case "off":
		return FlagOff, nil
	}
	return FlagDisabled, fmt.Errorf("unknown format flag %q (use on/off/disabled)", s)
}

// FormatAttr names one of the five format attributes.
type FormatAttr int

const (
	Bold FormatAttr = iota
	Italic
	Underlined
	Strikethrough
	Obfuscated
)

// FormatAttrs lists every attribute in display order.
var FormatAttrs = []FormatAttr{Bold, Italic, Underlined, Strikethrough, Obfuscated}

func (a FormatAttr) String() string {
	switch a {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Underlined:
		return "underlined"
	case Strikethrough:
		return "strikethrough"
	case Obfuscated:
		return "obfuscated"
	}
	return fmt.Sprintf("FormatAttr(%d)", int(a))
}

// TextStyle is the presentation a notification applies to its match.
type TextStyle struct {
	DoColor       bool
	Color         *RGB
	Bold          Flag
	Italic        Flag
	Underlined    Flag
	Strikethrough Flag
	Obfuscated    Flag
}

// Flag returns the setting for attr.
func (s TextStyle) Flag(attr FormatAttr) Flag {
	switch attr {
	case Bold:
		return s.Bold
	case Italic:
		return s.Italic
	case Underlined:
		return s.Underlined
	case Strikethrough:
		return s.Strikethrough
	case Obfuscated:
		return s.Obfuscated
	}
	return FlagDisabled
}

// WithFlag returns a copy of s with attr set to f.
func (s TextStyle) WithFlag(attr FormatAttr, f Flag) TextStyle {
	switch attr {
	case Bold:
		s.Bold = f
	case Italic:
		s.Italic = f
	case Underlined:
		s.Underlined = f
	case Strikethrough:
		s.Strikethrough = f
	case Obfuscated:
		s.Obfuscated = f
	}
	return s
}
