package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

const defaultNtfyServer = "https://ntfy.sh"

// ntfyPriority maps our levels onto ntfy's 1..5 scale.
var ntfyPriority = map[Priority]int{
	PriorityLow:    2,
	PriorityNormal: 3,
	PriorityHigh:   4,
	PriorityUrgent: 5,
}

// NtfyConfig points process notifications at an ntfy topic.
type NtfyConfig struct {
	ServerURL string `json:"server_url" yaml:"server_url" toml:"server_url"`
	Topic     string `json:"topic" yaml:"topic" toml:"topic"`
	Token     string `json:"token,omitempty" yaml:"token" toml:"token"`
}

// NtfyChannel publishes to a single topic, on ntfy.sh unless ServerURL says otherwise.
type NtfyChannel struct {
	ServerURL string
	Topic     string
	Token     string
	client    *http.Client
}

type ntfyMessage struct {
	Topic    string   `json:"topic"`
	Title    string   `json:"title,omitempty"`
	Message  string   `json:"message"`
	Tags     []string `json:"tags,omitempty"`
	Priority int      `json:"priority,omitempty"`
}

func NewNtfyChannel(cfg NtfyConfig) *NtfyChannel {
	server := cfg.ServerURL
	if server == "" {
		server = defaultNtfyServer
	}
	return &NtfyChannel{
		ServerURL: strings.TrimSuffix(server, "/"),
		Topic:     cfg.Topic,
		Token:     cfg.Token,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *NtfyChannel) Type() string { return "ntfy" }

// Send posts msg to the server root. The topic travels in the JSON body,
// which lets one request shape serve any topic name.
func (n *NtfyChannel) Send(ctx context.Context, msg *Message) error {
	body, err := sonic.Marshal(ntfyMessage{
		Topic:    n.Topic,
		Title:    msg.Title,
		Message:  msg.Body,
		Tags:     msg.Tags,
		Priority: ntfyPriority[msg.Priority],
	})
	if err != nil {
		return fmt.Errorf("encode ntfy message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.ServerURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ntfy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.Token != "" {
		req.Header.Set("Authorization", "Bearer "+n.Token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", n.Topic, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("ntfy returned status %d", resp.StatusCode)
	}
	return nil
}
