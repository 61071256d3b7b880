package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/spf13/cobra"

	"github.com/jandubois/droidlaunch/internal/installer"
	"github.com/jandubois/droidlaunch/internal/lifecycle"
	"github.com/jandubois/droidlaunch/internal/mirror"
)

var mirrorCmd = &cobra.Command{
	Use:     "mirror",
	GroupID: deviceGroupID,
	Short:   "Mirror the device screen with scrcpy",
	Long: `Mirror makes sure scrcpy is installed, composes its command line from
the config file, profile and flags, and runs it until it exits or the
command is interrupted.

With --detect the device's Wi-Fi address is probed first and used for
--tcpip, so the session survives unplugging the USB cable.`,
	RunE: runMirror,
}

func init() {
	rootCmd.AddCommand(mirrorCmd)

	addMirrorFlags(mirrorCmd)
	addADBFlags(mirrorCmd)
	mirrorCmd.Flags().Bool("detect", false, "Probe the device address and connect over TCP/IP")
	mirrorCmd.Flags().Bool("dry-run", false, "Print the command instead of running it")
	mirrorCmd.Flags().Bool("no-install", false, "Do not download scrcpy when it is missing")
}

func runMirror(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	file, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg, err := mirrorConfig(cmd, file)
	if err != nil {
		return err
	}

	if d, _ := cmd.Flags().GetBool("detect"); d {
		res, err := detect(ctx, newProber(cmd, file))
		if err != nil {
			return err
		}
		cfg.TCPIP = mirror.TextOption{Enabled: true, Value: net.JoinHostPort(res.Address, adbTCPPort)}
		slog.Info("device address detected", "address", res.Address, "method", res.Method)
	}

	if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), mirror.Compose(cfg).String())
		return err
	}

	program, err := resolveMirror(ctx, cmd)
	if err != nil {
		return err
	}
	return runForeground(ctx, file, lifecycle.Mirror, mirror.ComposeWith(program, cfg))
}

// resolveMirror returns the scrcpy executable, installing it when allowed.
func resolveMirror(ctx context.Context, cmd *cobra.Command) (string, error) {
	if noInstall, _ := cmd.Flags().GetBool("no-install"); noInstall {
		return mirror.ProgramName, nil
	}

	res, err := installer.New(installer.Options{Progress: progressPrinter(cmd)}).Ensure(ctx)
	if errors.Is(err, installer.ErrManualInstall) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("install scrcpy: %w", err)
	}
	if res.Outcome == installer.Installed {
		slog.Info("scrcpy installed", "dir", res.Dir)
	}
	return res.Path, nil
}
