package style

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/Veraticus/chat-notify/pkg/types"
)

// Renderer applies resolved styles to spans of text for a terminal.
type Renderer struct {
	r *lipgloss.Renderer
}

// NewRenderer detects the colour profile of w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{r: lipgloss.NewRenderer(w)}
}

// NewRendererWithProfile forces a colour profile, for pipes and tests.
func NewRendererWithProfile(w io.Writer, profile termenv.Profile) *Renderer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)
	return &Renderer{r: r}
}

// Render returns text with style applied to span. An out of range span
// leaves text untouched.
func (rd *Renderer) Render(text string, span types.Span, resolved types.ResolvedStyle) string {
	if span.Start < 0 || span.End > len(text) || span.Start >= span.End {
		return text
	}
	styled := rd.lipglossStyle(resolved).Render(text[span.Start:span.End])
	return text[:span.Start] + styled + text[span.End:]
}

func (rd *Renderer) lipglossStyle(resolved types.ResolvedStyle) lipgloss.Style {
	s := rd.r.NewStyle()
	if resolved.Color != nil {
		s = s.Foreground(lipgloss.Color(resolved.Color.Hex()))
	}
	if resolved.Bold != nil {
		s = s.Bold(*resolved.Bold)
	}
	if resolved.Italic != nil {
		s = s.Italic(*resolved.Italic)
	}
	if resolved.Underlined != nil {
		s = s.Underline(*resolved.Underlined)
	}
	if resolved.Strikethrough != nil {
		s = s.Strikethrough(*resolved.Strikethrough)
	}
	// Terminals cannot scramble glyphs; blink is the closest attention cue.
	if resolved.Obfuscated != nil {
		s = s.Blink(*resolved.Obfuscated)
	}
	return s
}
