package lifecycle

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Stream names the pipe a line came from.
type Stream string

const (
	StreamStdout Stream = "stdout"
	StreamStderr Stream = "stderr"
)

// Line is one line of process output.
type Line struct {
	Tool   Tool      `json:"tool"`
	Stream Stream    `json:"stream"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}

// Sink receives process output. Line is called from the output goroutines.
type Sink interface {
	Line(l Line)
}

type discard struct{}

func (discard) Line(Line) {}

// Discard drops all output.
var Discard Sink = discard{}

// WriterSink prints lines as "tool| text".
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a WriterSink.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Line(l Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "%s| %s\n", l.Tool, l.Text)
}

// Sinks fans a line out to several sinks.
type Sinks []Sink

func (s Sinks) Line(l Line) {
	for _, sink := range s {
		sink.Line(l)
	}
}

// Hub keeps a bounded backlog of lines and fans them out to subscribers.
// Slow subscribers lose lines instead of blocking the process.
type Hub struct {
	mu      sync.Mutex
	size    int
	backlog []Line
	subs    map[chan Line]struct{}
}

// NewHub creates a Hub remembering up to size lines.
func NewHub(size int) *Hub {
	if size <= 0 {
		size = 500
	}
	return &Hub{size: size, subs: make(map[chan Line]struct{})}
}

func (h *Hub) Line(l Line) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.backlog = append(h.backlog, l)
	if len(h.backlog) > h.size {
		h.backlog = append(h.backlog[:0], h.backlog[len(h.backlog)-h.size:]...)
	}
	for ch := range h.subs {
		select {
		case ch <- l:
		default:
		}
	}
}

// Backlog returns a copy of the remembered lines, oldest first.
func (h *Hub) Backlog() []Line {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Line(nil), h.backlog...)
}

// Subscribe returns the current backlog and a channel of new lines.
// The cancel func must be called to release the subscription.
func (h *Hub) Subscribe() ([]Line, <-chan Line, func()) {
	ch := make(chan Line, 64)

	h.mu.Lock()
	backlog := append([]Line(nil), h.backlog...)
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return backlog, ch, cancel
}
