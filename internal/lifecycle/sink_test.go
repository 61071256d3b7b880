package lifecycle

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHubBacklogIsBounded(t *testing.T) {
	hub := NewHub(3)
	for i := range 5 {
		hub.Line(Line{Tool: Mirror, Text: fmt.Sprintf("line %d", i)})
	}

	var texts []string
	for _, l := range hub.Backlog() {
		texts = append(texts, l.Text)
	}
	assert.Equal(t, []string{"line 2", "line 3", "line 4"}, texts)
}

func TestHubSubscribe(t *testing.T) {
	hub := NewHub(10)
	hub.Line(Line{Tool: Mirror, Text: "before"})

	backlog, ch, cancel := hub.Subscribe()
	assert.Len(t, backlog, 1)

	hub.Line(Line{Tool: Webcam, Text: "after"})
	l := <-ch
	assert.Equal(t, "after", l.Text)
	assert.Equal(t, Webcam, l.Tool)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	// Lines after cancel must not panic on the closed channel.
	hub.Line(Line{Tool: Mirror, Text: "later"})
}

func TestWriterSinkAndSinks(t *testing.T) {
	var a, b bytes.Buffer
	sinks := Sinks{NewWriterSink(&a), NewWriterSink(&b), Discard}
	sinks.Line(Line{Tool: Webcam, Stream: StreamStderr, Text: "connected"})

	assert.Equal(t, "webcam| connected\n", a.String())
	assert.Equal(t, a.String(), b.String())
}
