package runner

import (
	"context"
	"fmt"
	"sync"
)

// MockResponse is a predefined result for Mock.
type MockResponse struct {
	Stdout   string
	ExitCode int
	Err      error
	// Block, when set, holds the call until it is closed or the context ends.
	Block <-chan struct{}
}

// Mock maps "name arg1 arg2" keys to predefined responses and records calls.
type Mock struct {
	Responses map[string]MockResponse
	// Paths maps executable names to the path LookPath reports.
	Paths map[string]string
	// Started, when set, receives every key as its call begins.
	Started chan<- string

	mu    sync.Mutex
	calls []string
}

func (m *Mock) Run(ctx context.Context, name string, args ...string) (Output, error) {
	k := Key(name, args...)
	m.mu.Lock()
	m.calls = append(m.calls, k)
	m.mu.Unlock()

	if m.Started != nil {
		m.Started <- k
	}

	resp, ok := m.Responses[k]
	if !ok {
		return Output{}, fmt.Errorf("%w: mock has no response for %q", ErrNotFound, k)
	}

	if resp.Block != nil {
		select {
		case <-resp.Block:
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return Output{}, fmt.Errorf("%w: %s", ErrTimeout, k)
			}
			return Output{}, fmt.Errorf("%s: %w", k, ctx.Err())
		}
	}

	out := Output{Stdout: resp.Stdout, ExitCode: resp.ExitCode}
	if resp.Err != nil {
		return out, resp.Err
	}
	if resp.ExitCode != 0 {
		return out, fmt.Errorf("%w: %s exited with code %d", ErrExit, name, resp.ExitCode)
	}
	return out, nil
}

func (m *Mock) LookPath(name string) (string, error) {
	if path, ok := m.Paths[name]; ok {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Calls returns the keys of every Run so far, in order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
