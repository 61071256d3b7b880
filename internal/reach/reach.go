// Package reach checks that a detected device answers on the network.
package reach

import (
	"context"
	"fmt"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"github.com/jandubois/droidlaunch/internal/webcam"
)

// Result summarizes a ping run.
type Result struct {
	Host      string        `json:"host"`
	Sent      int           `json:"sent"`
	Received  int           `json:"received"`
	Loss      float64       `json:"loss_percent"`
	AvgRTT    time.Duration `json:"avg_rtt"`
	Reachable bool          `json:"reachable"`
	Error     string        `json:"error,omitempty"`
}

// Options configures Ping.
type Options struct {
	Count   int
	Timeout time.Duration

	// Privileged uses raw ICMP sockets; otherwise unprivileged UDP pings.
	Privileged bool
}

// Ping sends echo requests to address, which may carry a port.
func Ping(ctx context.Context, address string, opts Options) (Result, error) {
	if opts.Count <= 0 {
		opts.Count = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}

	host := webcam.Host(address)
	pinger, err := probing.NewPinger(host)
	if err != nil {
		return Result{Host: host}, fmt.Errorf("ping %s: %w", host, err)
	}
	pinger.Count = opts.Count
	pinger.Timeout = opts.Timeout
	pinger.Interval = 200 * time.Millisecond
	pinger.SetPrivileged(opts.Privileged)

	if err := pinger.RunWithContext(ctx); err != nil {
		return Result{Host: host}, fmt.Errorf("ping %s: %w", host, err)
	}

	stats := pinger.Statistics()
	return Result{
		Host:      host,
		Sent:      stats.PacketsSent,
		Received:  stats.PacketsRecv,
		Loss:      stats.PacketLoss,
		AvgRTT:    stats.AvgRtt,
		Reachable: stats.PacketsRecv > 0,
	}, nil
}
