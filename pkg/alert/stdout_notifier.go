package alert

import (
	"fmt"
	"io"
	"os"
)

// StdoutNotifier prints alerts instead of pushing them. It is used in quiet
// mode and when no ntfy topic is configured.
type StdoutNotifier struct {
	w io.Writer
}

// NewStdoutNotifier creates a notifier that writes to w, or stdout if w is nil.
func NewStdoutNotifier(w io.Writer) *StdoutNotifier {
	if w == nil {
		w = os.Stdout
	}
	return &StdoutNotifier{w: w}
}

// Send prints the alert.
func (n *StdoutNotifier) Send(a Alert) error {
	sound := ""
	if a.Sound.Enabled && a.Sound.ID != "" {
		sound = fmt.Sprintf(" [sound %s vol=%g pitch=%g]", a.Sound.ID, a.Sound.Volume, a.Sound.Pitch)
	}
	_, err := fmt.Fprintf(n.w, "[ALERT] %s: %s (Rule: %s)%s\n", a.Title, a.Message, a.Rule, sound)
	return err
}
