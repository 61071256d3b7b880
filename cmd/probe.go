package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/jandubois/droidlaunch/internal/config"
	"github.com/jandubois/droidlaunch/internal/probe"
	"github.com/jandubois/droidlaunch/internal/prober"
	"github.com/jandubois/droidlaunch/internal/reach"
	"github.com/jandubois/droidlaunch/internal/runner"
)

// adbTCPPort is the port adb listens on after "adb tcpip".
const adbTCPPort = "5555"

var probeCmd = &cobra.Command{
	Use:     "probe",
	GroupID: deviceGroupID,
	Short:   "Detect the Wi-Fi address of the USB-attached device",
	Long: `Probe asks adb for the attached device's wlan address, trying
"ip addr", "ifconfig" and the dhcp property in turn, and prints the result
as JSON. It exits nonzero when no address was found.`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	addADBFlags(probeCmd)
	probeCmd.Flags().Bool("ping", false, "Check that the address answers ICMP echo")
	probeCmd.Flags().Bool("privileged", false, "Use raw ICMP sockets for --ping")
	probeCmd.Flags().Bool("qr", false, "Print the host:5555 address as a QR code")
}

func addADBFlags(cmd *cobra.Command) {
	cmd.Flags().String("adb", "", "Path to adb (or ADB_PATH env)")
	cmd.Flags().String("serial", "", "Device serial (default: first ready device)")
	cmd.Flags().String("interface", "", "Wireless interface (default: wlan0)")
	cmd.Flags().Duration("adb-timeout", 0, "Timeout per adb invocation (default: 5s)")
}

func newProber(cmd *cobra.Command, file config.File) *prober.Prober {
	opts := file.ProberOptions()
	if v, _ := cmd.Flags().GetString("adb"); v != "" {
		opts.ADBPath = v
	}
	if v, _ := cmd.Flags().GetString("serial"); v != "" {
		opts.Serial = v
	}
	if v, _ := cmd.Flags().GetString("interface"); v != "" {
		opts.Interface = v
	}
	if v, _ := cmd.Flags().GetDuration("adb-timeout"); v > 0 {
		opts.StepTimeout = v
	}
	return prober.New(runner.NewExec(), opts)
}

// detect runs a probe and turns a miss into an error.
func detect(ctx context.Context, p *prober.Prober) (probe.Result, error) {
	res := p.Probe(ctx)
	if !res.Found {
		return res, errors.New(res.Message)
	}
	return res, nil
}

type probeOutput struct {
	probe.Result
	Reach *reach.Result `json:"reach,omitempty"`
}

type pingFunc func(ctx context.Context, address string, opts reach.Options) (reach.Result, error)

// checkReach never fails: a ping error is reported in the result so the
// detected address is still printed.
func checkReach(ctx context.Context, ping pingFunc, address string, opts reach.Options) *reach.Result {
	r, err := ping(ctx, address, opts)
	if err != nil {
		slog.Warn("reachability check failed", "address", address, "error", err)
		return &reach.Result{Host: address, Error: err.Error()}
	}
	return &r
}

func runProbe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	file, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	res, probeErr := detect(ctx, newProber(cmd, file))
	out := probeOutput{Result: res}

	if res.Found {
		if ping, _ := cmd.Flags().GetBool("ping"); ping {
			privileged, _ := cmd.Flags().GetBool("privileged")
			out.Reach = checkReach(ctx, reach.Ping, res.Address, reach.Options{Timeout: 3 * time.Second, Privileged: privileged})
		}
	}

	if err := outputJSON(cmd, out); err != nil {
		return err
	}
	if probeErr != nil {
		return probeErr
	}

	if qr, _ := cmd.Flags().GetBool("qr"); qr {
		code, err := qrcode.New(net.JoinHostPort(res.Address, adbTCPPort), qrcode.Medium)
		if err != nil {
			return fmt.Errorf("render QR code: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), code.ToSmallString(false))
	}
	return nil
}
