// Package runner executes external commands behind an interface so callers
// can be tested against recorded responses.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
	"time"
)

var (
	// ErrNotFound means the executable could not be located or launched.
	ErrNotFound = errors.New("executable not found")
	// ErrExit means the command ran and exited with a nonzero code.
	ErrExit = errors.New("nonzero exit")
	// ErrTimeout means the command hit its context deadline.
	ErrTimeout = errors.New("command timed out")
)

// Output is what a finished command produced.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner abstracts command execution.
//
// Run returns a nil error only for a zero exit code. A nonzero exit wraps
// ErrExit and still carries the output; a deadline wraps ErrTimeout; a
// cancelled context wraps context.Canceled; anything else is a launch failure.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Output, error)
	LookPath(name string) (string, error)
}

// Exec runs commands with os/exec.
type Exec struct {
	// KillDelay is how long a timed-out command gets between SIGTERM and SIGKILL.
	KillDelay time.Duration
}

// NewExec returns an Exec with a short kill delay.
func NewExec() *Exec {
	return &Exec{KillDelay: 2 * time.Second}
}

func (e *Exec) Run(ctx context.Context, name string, args ...string) (Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Cancel = func() error { return Terminate(cmd) }
	cmd.WaitDelay = e.KillDelay

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return out, nil
	}

	switch ctx.Err() {
	case context.DeadlineExceeded:
		return out, fmt.Errorf("%w: %s", ErrTimeout, Key(name, args...))
	case context.Canceled:
		return out, fmt.Errorf("%s: %w", Key(name, args...), context.Canceled)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, fmt.Errorf("%w: %s exited with code %d", ErrExit, name, out.ExitCode)
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return out, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return out, fmt.Errorf("run %s: %w", name, err)
}

func (e *Exec) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return path, nil
}

// Terminate asks a started command to exit: SIGTERM on Unix, kill on Windows.
func Terminate(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if runtime.GOOS == "windows" {
		return cmd.Process.Kill()
	}
	return cmd.Process.Signal(syscall.SIGTERM)
}

// FirstInstalled returns the resolved path of the first candidate on PATH.
func FirstInstalled(r Runner, candidates ...string) (string, error) {
	for _, name := range candidates {
		if path, err := r.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: none of %s", ErrNotFound, strings.Join(candidates, ", "))
}

// Key joins a command line the way Mock indexes its responses.
func Key(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}
