package alert

import (
	"fmt"
	"time"

	"resty.dev/v3"
)

// ntfyMessage is the JSON publish body accepted by ntfy at its root URL.
type ntfyMessage struct {
	Topic   string   `json:"topic"`
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Tags    []string `json:"tags,omitempty"`
}

// NtfyClient publishes alerts to an ntfy server.
type NtfyClient struct {
	server string
	topic  string
	client *resty.Client
}

// NewNtfyClient creates a client for topic on server.
func NewNtfyClient(server, topic string) *NtfyClient {
	return &NtfyClient{
		server: server,
		topic:  topic,
		client: resty.New().SetTimeout(10 * time.Second),
	}
}

// Send publishes the alert.
func (c *NtfyClient) Send(a Alert) error {
	body := ntfyMessage{
		Topic:   c.topic,
		Title:   a.Title,
		Message: a.Message,
	}
	if a.Rule != "" {
		body.Tags = append(body.Tags, a.Rule)
	}
	if a.Sound.Enabled && a.Sound.ID != "" {
		body.Tags = append(body.Tags, "sound:"+a.Sound.ID)
	}

	resp, err := c.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.server)
	if err != nil {
		return fmt.Errorf("sending to ntfy: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("ntfy returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// Close releases the underlying HTTP client.
func (c *NtfyClient) Close() error {
	return c.client.Close()
}
