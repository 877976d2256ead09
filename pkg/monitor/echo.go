package monitor

import (
	"fmt"
	"io"
	"sync"

	"github.com/Veraticus/chat-notify/pkg/style"
	"github.com/Veraticus/chat-notify/pkg/types"
)

// Echo prints every event. Fired notifications get their resolved style
// applied to the style span.
type Echo struct {
	mu       sync.Mutex
	w        io.Writer
	renderer *style.Renderer
}

// NewEcho creates an echo printing to w with renderer.
func NewEcho(w io.Writer, renderer *style.Renderer) *Echo {
	return &Echo{w: w, renderer: renderer}
}

// HandleEvent implements interfaces.EventHandler.
func (e *Echo) HandleEvent(event types.TextEvent, outcome *types.MatchOutcome) {
	line := event.Text
	if outcome != nil {
		line = e.renderer.Render(event.Text, outcome.StyleSpan, outcome.Style)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	_, _ = fmt.Fprintln(e.w, line)
}
