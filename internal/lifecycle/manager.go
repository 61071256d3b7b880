// Package lifecycle owns the external mirroring and webcam processes.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	units "github.com/docker/go-units"
	"github.com/google/uuid"

	"github.com/jandubois/droidlaunch/internal/runner"
)

// Tool identifies a managed external program.
type Tool string

const (
	Mirror Tool = "mirror"
	Webcam Tool = "webcam"
)

// Tools lists every managed tool in display order.
var Tools = []Tool{Mirror, Webcam}

var (
	ErrAlreadyRunning = errors.New("already running")
	ErrNotRunning     = errors.New("not running")
	ErrEmptyCommand   = errors.New("empty command")
)

// DefaultStopGrace is how long Stop waits after SIGTERM before killing.
const DefaultStopGrace = 3 * time.Second

// outputDrain is how long output is still collected after the child exits.
// Helpers it leaves behind may keep the pipes open; they are closed after this.
const outputDrain = time.Second

// Status describes one tool slot.
type Status struct {
	Tool      Tool      `json:"tool"`
	Running   bool      `json:"running"`
	RunID     string    `json:"run_id,omitempty"`
	PID       int       `json:"pid,omitempty"`
	Command   []string  `json:"command,omitempty"`
	StartedAt time.Time `json:"started_at,omitzero"`
	Uptime    string    `json:"uptime,omitempty"`
}

// Options configures a Manager.
type Options struct {
	Sink      Sink
	Notifier  Notifier
	StopGrace time.Duration
}

// Manager runs at most one process per tool.
type Manager struct {
	sink      Sink
	notifier  Notifier
	stopGrace time.Duration

	mu    sync.Mutex
	procs map[Tool]*process
}

type process struct {
	id        string
	tool      Tool
	command   []string
	cmd       *exec.Cmd
	startedAt time.Time
	done      chan struct{}
	stopping  bool
}

// NewManager creates a Manager.
func NewManager(opts Options) *Manager {
	if opts.Sink == nil {
		opts.Sink = Discard
	}
	if opts.Notifier == nil {
		opts.Notifier = NotifierFunc(func(Event) {})
	}
	if opts.StopGrace <= 0 {
		opts.StopGrace = DefaultStopGrace
	}
	return &Manager{
		sink:      opts.Sink,
		notifier:  opts.Notifier,
		stopGrace: opts.StopGrace,
		procs:     make(map[Tool]*process),
	}
}

// Start launches command for tool. It fails with ErrAlreadyRunning while a
// previous process of the same tool is alive.
func (m *Manager) Start(tool Tool, command []string) (Status, error) {
	if len(command) == 0 || command[0] == "" {
		return Status{}, fmt.Errorf("start %s: %w", tool, ErrEmptyCommand)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.procs[tool]; ok {
		return p.status(), fmt.Errorf("start %s: %w", tool, ErrAlreadyRunning)
	}

	stdout := newLineWriter(tool, StreamStdout, m.sink)
	stderr := newLineWriter(tool, StreamStderr, m.sink)
	cmd := exec.Command(command[0], command[1:]...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = outputDrain

	p := &process{
		id:      uuid.NewString(),
		tool:    tool,
		command: append([]string(nil), command...),
		cmd:     cmd,
		done:    make(chan struct{}),
	}

	if err := cmd.Start(); err != nil {
		m.notifier.Notify(Event{Tool: tool, RunID: p.id, State: StateFailed, Command: p.command, At: time.Now(), Message: err.Error()})
		return Status{}, fmt.Errorf("start %s: %w", tool, err)
	}
	p.startedAt = time.Now()
	m.procs[tool] = p

	slog.Info("process started", "tool", tool, "run_id", p.id, "pid", cmd.Process.Pid, "command", p.command)
	m.notifier.Notify(Event{Tool: tool, RunID: p.id, State: StateStarted, Command: p.command, At: p.startedAt})

	go m.watch(p, stdout, stderr)
	return p.status(), nil
}

func (m *Manager) watch(p *process, outputs ...*lineWriter) {
	err := p.cmd.Wait()
	if errors.Is(err, exec.ErrWaitDelay) {
		// Exited cleanly, but something it spawned still held the output pipes.
		slog.Debug("output pipes closed after exit", "tool", p.tool, "run_id", p.id)
		err = nil
	}
	for _, w := range outputs {
		w.Flush()
	}

	m.mu.Lock()
	if m.procs[p.tool] == p {
		delete(m.procs, p.tool)
	}
	stopping := p.stopping
	m.mu.Unlock()

	ev := Event{Tool: p.tool, RunID: p.id, Command: p.command, At: time.Now(), ExitCode: p.cmd.ProcessState.ExitCode()}
	switch {
	case stopping:
		ev.State = StateStopped
	case err != nil:
		ev.State = StateFailed
		ev.Message = err.Error()
	default:
		ev.State = StateExited
	}

	slog.Info("process finished",
		"tool", p.tool,
		"run_id", p.id,
		"state", ev.State,
		"exit_code", ev.ExitCode,
		"uptime", units.HumanDuration(ev.At.Sub(p.startedAt)),
	)
	m.notifier.Notify(ev)
	close(p.done)
}

// Stop terminates the tool's process, killing it if it outlives the grace period.
func (m *Manager) Stop(tool Tool) error {
	m.mu.Lock()
	p, ok := m.procs[tool]
	if ok {
		p.stopping = true
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("stop %s: %w", tool, ErrNotRunning)
	}

	if err := runner.Terminate(p.cmd); err != nil {
		slog.Debug("terminate failed", "tool", tool, "error", err)
	}

	select {
	case <-p.done:
	case <-time.After(m.stopGrace):
		slog.Warn("process did not exit in time, killing", "tool", tool, "run_id", p.id, "grace", m.stopGrace)
		_ = p.cmd.Process.Kill()
		<-p.done
	}
	return nil
}

// StopAll stops every running tool.
func (m *Manager) StopAll() {
	for _, tool := range Tools {
		if err := m.Stop(tool); err != nil && !errors.Is(err, ErrNotRunning) {
			slog.Error("stop failed", "tool", tool, "error", err)
		}
	}
}

// Wait blocks until the tool's current process exits or ctx ends.
func (m *Manager) Wait(ctx context.Context, tool Tool) error {
	m.mu.Lock()
	p, ok := m.procs[tool]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("wait %s: %w", tool, ErrNotRunning)
	}

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StatusOf reports one tool slot.
func (m *Manager) StatusOf(tool Tool) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.procs[tool]; ok {
		return p.status()
	}
	return Status{Tool: tool}
}

// Status reports every tool slot.
func (m *Manager) Status() []Status {
	statuses := make([]Status, 0, len(Tools))
	for _, tool := range Tools {
		statuses = append(statuses, m.StatusOf(tool))
	}
	return statuses
}

func (p *process) status() Status {
	s := Status{
		Tool:      p.tool,
		Running:   true,
		RunID:     p.id,
		Command:   p.command,
		StartedAt: p.startedAt,
		Uptime:    units.HumanDuration(time.Since(p.startedAt)),
	}
	if p.cmd.Process != nil {
		s.PID = p.cmd.Process.Pid
	}
	return s
}
