package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/dlclark/regexp2"
	"github.com/goccy/go-json"

	"github.com/Veraticus/chat-notify/pkg/config"
	"github.com/Veraticus/chat-notify/pkg/matcher"
	"github.com/Veraticus/chat-notify/pkg/types"
)

// Decoder turns one raw output line into a text event. ok is false for
// lines that carry no chat text.
type Decoder interface {
	Decode(line string) (event types.TextEvent, ok bool, err error)
}

// NewDecoder returns the decoder for the configured input format.
func NewDecoder(cfg *config.Config) (Decoder, error) {
	switch cfg.InputFormat {
	case config.InputJSON:
		return JSONDecoder{}, nil
	case config.InputText, "":
		return NewTextDecoder(cfg.Self.OwnMessagePattern)
	}
	return nil, fmt.Errorf("unknown input format %q", cfg.InputFormat)
}

// TextDecoder treats every line as plain chat text. Terminal escape
// sequences are stripped first.
type TextDecoder struct {
	self *regexp2.Regexp
}

// NewTextDecoder creates a text decoder. Lines matching ownMessagePattern
// are marked as sent by the local user.
func NewTextDecoder(ownMessagePattern string) (*TextDecoder, error) {
	d := &TextDecoder{}
	if ownMessagePattern != "" {
		re, err := matcher.CompilePattern(ownMessagePattern)
		if err != nil {
			return nil, fmt.Errorf("own message pattern: %w", err)
		}
		d.self = re
	}
	return d, nil
}

// Decode implements Decoder.
func (d *TextDecoder) Decode(line string) (types.TextEvent, bool, error) {
	text := strings.TrimRight(ansi.Strip(line), "\r")
	if strings.TrimSpace(text) == "" {
		return types.TextEvent{}, false, nil
	}

	event := types.TextEvent{Text: text}
	if d.self != nil {
		// A timeout is treated as not self.
		self, _ := d.self.MatchString(text)
		event.SelfOriginated = self
	}
	return event, true, nil
}

// jsonEvent is one line of JSON input:
//
//	{"text":"...","key":"death.fell","self":false,"style":{"color":"#ff0000","bold":true}}
type jsonEvent struct {
	Text  string     `json:"text"`
	Key   string     `json:"key"`
	Self  bool       `json:"self"`
	Style *jsonStyle `json:"style"`
}

type jsonStyle struct {
	Color         string `json:"color"`
	Bold          *bool  `json:"bold"`
	Italic        *bool  `json:"italic"`
	Underlined    *bool  `json:"underlined"`
	Strikethrough *bool  `json:"strikethrough"`
	Obfuscated    *bool  `json:"obfuscated"`
}

// JSONDecoder reads one JSON object per line.
type JSONDecoder struct{}

// Decode implements Decoder.
func (JSONDecoder) Decode(line string) (types.TextEvent, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return types.TextEvent{}, false, nil
	}

	var in jsonEvent
	if err := json.Unmarshal([]byte(line), &in); err != nil {
		return types.TextEvent{}, false, fmt.Errorf("decoding event: %w", err)
	}
	if in.Text == "" && in.Key == "" {
		return types.TextEvent{}, false, nil
	}

	event := types.TextEvent{
		Text:           in.Text,
		TranslationKey: in.Key,
		SelfOriginated: in.Self,
	}
	if in.Style != nil {
		style := &types.Style{
			Bold:          in.Style.Bold,
			Italic:        in.Style.Italic,
			Underlined:    in.Style.Underlined,
			Strikethrough: in.Style.Strikethrough,
			Obfuscated:    in.Style.Obfuscated,
		}
		if in.Style.Color != "" {
			rgb, err := config.ParseColor(in.Style.Color)
			if err != nil {
				return types.TextEvent{}, false, fmt.Errorf("decoding event style: %w", err)
			}
			style.Color = &rgb
		}
		event.Style = style
	}
	return event, true, nil
}
