package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/jandubois/droidlaunch/internal/config"
	"github.com/jandubois/droidlaunch/internal/lifecycle"
	"github.com/jandubois/droidlaunch/internal/logging"
	"github.com/jandubois/droidlaunch/internal/notify"
)

// Version is set at build time via -ldflags "-X github.com/jandubois/droidlaunch/cmd.Version=..."
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "droidlaunch",
	Short: "Launch screen mirroring and webcam bridging for Android devices",
	Long: `droidlaunch composes scrcpy command lines, discovers an attached
device's Wi-Fi address through adb, and runs scrcpy and droidcam-cli as
managed child processes, from the command line or a local control API.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

const deviceGroupID = "device"

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.AddGroup(&cobra.Group{ID: deviceGroupID, Title: "Device Commands:"})
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file, .yaml or .toml (or DROIDLAUNCH_CONFIG env)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	_, err := logging.Setup(os.Stderr, level)
	return err
}

func loadConfig(cmd *cobra.Command) (config.File, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("DROIDLAUNCH_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.File{}, err
	}
	if path != "" {
		slog.Debug("config loaded", "path", path)
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			slog.Info("shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func newDispatcher(cfg config.NotifyConfig) *notify.Dispatcher {
	states := make([]lifecycle.State, 0, len(cfg.States))
	for _, s := range cfg.States {
		states = append(states, lifecycle.State(s))
	}
	d := notify.NewDispatcher(states...)
	if cfg.Log {
		d.Add(notify.LogChannel{})
	}
	if cfg.Ntfy != nil && cfg.Ntfy.Topic != "" {
		d.Add(notify.NewNtfyChannel(*cfg.Ntfy))
	}
	return d
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
