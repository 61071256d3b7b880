// Package prober discovers an attached Android device's Wi-Fi address by
// running adb diagnostics and parsing their text output.
package prober

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jandubois/droidlaunch/internal/probe"
	"github.com/jandubois/droidlaunch/internal/runner"
)

const (
	DefaultADB         = "adb"
	DefaultInterface   = "wlan0"
	DefaultStepTimeout = 5 * time.Second
)

// Options configures a Prober. Zero fields take the defaults above.
type Options struct {
	ADBPath     string
	Interface   string
	Serial      string // probe only this device; empty picks the first ready one
	StepTimeout time.Duration
}

// Prober runs one address probe at a time against a device.
type Prober struct {
	runner runner.Runner
	opts   Options
	busy   atomic.Bool
}

// New creates a Prober.
func New(r runner.Runner, opts Options) *Prober {
	if opts.ADBPath == "" {
		opts.ADBPath = DefaultADB
	}
	if opts.Interface == "" {
		opts.Interface = DefaultInterface
	}
	if opts.StepTimeout <= 0 {
		opts.StepTimeout = DefaultStepTimeout
	}
	return &Prober{runner: r, opts: opts}
}

// Busy reports whether a probe is in flight.
func (p *Prober) Busy() bool {
	return p.busy.Load()
}

// Go starts a probe in the background. The channel yields exactly one result.
// If a probe is already running the result is already-in-progress and is
// available immediately.
func (p *Prober) Go(ctx context.Context) <-chan probe.Result {
	ch := make(chan probe.Result, 1)
	if !p.busy.CompareAndSwap(false, true) {
		ch <- inProgress()
		close(ch)
		return ch
	}
	go func() {
		res := p.run(ctx)
		p.busy.Store(false)
		ch <- res
		close(ch)
	}()
	return ch
}

// Probe runs a probe and blocks until it finishes.
func (p *Prober) Probe(ctx context.Context) probe.Result {
	if !p.busy.CompareAndSwap(false, true) {
		return inProgress()
	}
	defer p.busy.Store(false)
	return p.run(ctx)
}

func inProgress() probe.Result {
	return probe.NotFound(probe.ReasonInProgress, "Address detection already in progress")
}

type step struct {
	method probe.Method
	args   []string
	match  func(string) (string, bool)
}

func (p *Prober) steps(serial string) []step {
	iface := p.opts.Interface
	return []step{
		{probe.MethodIPAddr, []string{"-s", serial, "shell", "ip", "addr", "show", iface}, matchIPAddr},
		{probe.MethodIfconfig, []string{"-s", serial, "shell", "ifconfig", iface}, matchIfconfig},
		{probe.MethodGetprop, []string{"-s", serial, "shell", "getprop", "dhcp." + iface + ".ipaddress"}, matchBareIPv4},
	}
}

func (p *Prober) run(ctx context.Context) probe.Result {
	start := time.Now()
	res := p.detect(ctx)
	slog.Info("address probe finished",
		"found", res.Found,
		"address", res.Address,
		"method", res.Method,
		"reason", res.Reason,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res
}

func (p *Prober) detect(ctx context.Context) probe.Result {
	if ctx.Err() != nil {
		return cancelled()
	}

	slog.Debug("checking for connected devices", "adb", p.opts.ADBPath)
	out, err := p.exec(ctx, "devices")
	if err != nil {
		if res, terminal := interrupted(err); terminal {
			return res
		}
		slog.Debug("device list failed", "error", err)
		return probe.NotFound(probe.ReasonToolMissing, "ADB not found. Make sure it's installed and in PATH.")
	}

	serial, ok := pickDevice(ParseDevices(out.Stdout), p.opts.Serial)
	if !ok {
		msg := "No Android device connected via USB."
		if p.opts.Serial != "" {
			msg = "Device " + p.opts.Serial + " is not connected or not authorized."
		}
		return probe.NotFound(probe.ReasonNoDevice, msg)
	}

	for _, s := range p.steps(serial) {
		if ctx.Err() != nil {
			return cancelled()
		}

		slog.Debug("getting device address", "method", s.method, "serial", serial)
		out, err := p.exec(ctx, s.args...)
		if err != nil {
			if res, terminal := interrupted(err); terminal {
				return res
			}
			slog.Debug("address method failed", "method", s.method, "error", err)
			continue
		}
		if addr, ok := s.match(out.Stdout); ok {
			return probe.Found(addr, s.method, serial)
		}
	}

	return probe.NotFound(probe.ReasonNoMatch, "Could not detect phone IP address. Make sure WiFi is enabled.")
}

func (p *Prober) exec(ctx context.Context, args ...string) (runner.Output, error) {
	stepCtx, cancel := context.WithTimeout(ctx, p.opts.StepTimeout)
	defer cancel()
	return p.runner.Run(stepCtx, p.opts.ADBPath, args...)
}

// interrupted maps errors that end the probe without trying later steps.
func interrupted(err error) (probe.Result, bool) {
	switch {
	case errors.Is(err, runner.ErrTimeout):
		return probe.NotFound(probe.ReasonTimedOut, "ADB command timed out."), true
	case errors.Is(err, context.Canceled):
		return cancelled(), true
	}
	return probe.Result{}, false
}

func cancelled() probe.Result {
	return probe.NotFound(probe.ReasonCancelled, "Address detection cancelled")
}
