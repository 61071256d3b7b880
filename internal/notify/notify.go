package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/jandubois/droidlaunch/internal/lifecycle"
)

// Channel is a notification channel.
type Channel interface {
	Send(ctx context.Context, msg *Message) error
	Type() string
}

// Message contains notification details.
type Message struct {
	Title    string
	Body     string
	Priority Priority
	Tags     []string
}

// Priority levels for notifications.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityUrgent
)

// FormatEvent creates a notification message for a process state change.
func FormatEvent(ev lifecycle.Event) *Message {
	priority := PriorityLow
	switch ev.State {
	case lifecycle.StateFailed:
		priority = PriorityHigh
	case lifecycle.StateExited, lifecycle.StateStopped:
		priority = PriorityNormal
	}

	title := fmt.Sprintf("[%s] %s", ev.State, ev.Tool)

	var body strings.Builder
	if len(ev.Command) > 0 {
		body.WriteString(strings.Join(ev.Command, " "))
	}
	if ev.State != lifecycle.StateStarted {
		fmt.Fprintf(&body, " (exit code %d)", ev.ExitCode)
	}
	if ev.Message != "" {
		body.WriteString(": " + ev.Message)
	}

	return &Message{
		Title:    title,
		Body:     strings.TrimSpace(body.String()),
		Priority: priority,
		Tags:     []string{string(ev.Tool), string(ev.State)},
	}
}
