package lifecycle

import (
	"bytes"
	"sync"
	"time"
)

// maxLine bounds a line that never sees a newline.
const maxLine = 64 * 1024

// lineWriter turns a byte stream into Lines for a Sink. os/exec copies the
// child's pipe into it from its own goroutine.
type lineWriter struct {
	tool   Tool
	stream Stream
	sink   Sink

	mu  sync.Mutex
	buf []byte
}

func newLineWriter(tool Tool, stream Stream, sink Sink) *lineWriter {
	return &lineWriter{tool: tool, stream: stream, sink: sink}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	if len(w.buf) >= maxLine {
		w.emit(w.buf)
		w.buf = nil
	}
	return len(p), nil
}

// Flush emits a trailing line without a newline.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.emit(w.buf)
		w.buf = nil
	}
}

func (w *lineWriter) emit(b []byte) {
	text := string(bytes.TrimSuffix(b, []byte{'\r'}))
	w.sink.Line(Line{Tool: w.tool, Stream: w.stream, Text: text, At: time.Now()})
}
