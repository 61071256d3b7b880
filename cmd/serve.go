package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jandubois/droidlaunch/internal/lifecycle"
	"github.com/jandubois/droidlaunch/internal/mirror"
	"github.com/jandubois/droidlaunch/internal/runner"
	"github.com/jandubois/droidlaunch/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local control service",
	Long: `Serve exposes composing, probing and process control over a REST API,
with process output streamed over a WebSocket at /api/logs. Every route
except /api/health requires the bearer token.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	addADBFlags(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default: 127.0.0.1:8470)")
	serveCmd.Flags().String("auth-token", "", "Authentication token (or AUTH_TOKEN env)")
	serveCmd.Flags().Bool("echo", false, "Also print process output to stdout")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	file, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		file.Serve.Addr = v
	}
	if v, _ := cmd.Flags().GetString("auth-token"); v != "" {
		file.Serve.AuthToken = v
	}
	if file.Serve.AuthToken == "" {
		return fmt.Errorf("auth token required (--auth-token, AUTH_TOKEN or serve.auth_token)")
	}

	hub := lifecycle.NewHub(file.Serve.Backlog)
	var sink lifecycle.Sink = hub
	if echo, _ := cmd.Flags().GetBool("echo"); echo {
		sink = lifecycle.Sinks{hub, lifecycle.NewWriterSink(cmd.OutOrStdout())}
	}

	dispatcher := newDispatcher(file.Notify)
	defer dispatcher.Wait()

	manager := lifecycle.NewManager(lifecycle.Options{Sink: sink, Notifier: dispatcher})
	defer manager.StopAll()

	exec := runner.NewExec()
	mirrorProgram := mirror.ProgramName
	if path, err := exec.LookPath(mirror.ProgramName); err == nil {
		mirrorProgram = path
	} else {
		slog.Warn("scrcpy not found on PATH; run 'droidlaunch install'", "error", err)
	}

	server := web.NewServer(web.Options{
		Config:        file.Serve,
		Manager:       manager,
		Hub:           hub,
		Prober:        newProber(cmd, file),
		Mirror:        file.Mirror,
		MirrorProgram: mirrorProgram,
		WebcamProgram: webcamProgram(file, exec),
		WebcamPort:    file.Webcam.Port,
		Version:       Version,
	})

	slog.Info("starting control server", "addr", file.Serve.Addr, "notification_channels", dispatcher.Len())
	return server.Run(ctx)
}
