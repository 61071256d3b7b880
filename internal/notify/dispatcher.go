// Package notify forwards process state changes to notification channels.
package notify

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jandubois/droidlaunch/internal/lifecycle"
)

// Dispatcher fans lifecycle events out to its channels. It implements
// lifecycle.Notifier and never blocks the caller on a send.
type Dispatcher struct {
	timeout time.Duration
	states  []lifecycle.State

	mu       sync.RWMutex
	channels []Channel
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher. With no states given every transition
// is forwarded.
func NewDispatcher(states ...lifecycle.State) *Dispatcher {
	return &Dispatcher{timeout: 15 * time.Second, states: states}
}

// Add registers a channel.
func (d *Dispatcher) Add(ch Channel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.channels = append(d.channels, ch)
	slog.Info("notification channel added", "type", ch.Type())
}

// Len reports the number of channels.
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.channels)
}

// Notify sends ev to every channel in the background.
func (d *Dispatcher) Notify(ev lifecycle.Event) {
	if len(d.states) > 0 && !slices.Contains(d.states, ev.State) {
		return
	}
	msg := FormatEvent(ev)

	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, channel := range d.channels {
		d.wg.Add(1)
		go func(ch Channel) {
			defer d.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()

			if err := ch.Send(ctx, msg); err != nil {
				slog.Error("notification send failed",
					"channel_type", ch.Type(),
					"tool", ev.Tool,
					"error", err,
				)
			} else {
				slog.Debug("notification sent",
					"channel_type", ch.Type(),
					"tool", ev.Tool,
					"state", ev.State,
				)
			}
		}(channel)
	}
}

// Wait blocks until every pending send has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// LogChannel writes notifications to the structured log.
type LogChannel struct{}

func (LogChannel) Type() string { return "log" }

func (LogChannel) Send(_ context.Context, msg *Message) error {
	level := slog.LevelInfo
	if msg.Priority >= PriorityHigh {
		level = slog.LevelWarn
	}
	slog.Log(context.Background(), level, msg.Title, "body", msg.Body, "tags", msg.Tags)
	return nil
}
