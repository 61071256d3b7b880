package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jandubois/droidlaunch/internal/config"
	"github.com/jandubois/droidlaunch/internal/lifecycle"
	"github.com/jandubois/droidlaunch/internal/runner"
	"github.com/jandubois/droidlaunch/internal/webcam"
)

var webcamCmd = &cobra.Command{
	Use:     "webcam",
	GroupID: deviceGroupID,
	Short:   "Use the phone as a webcam through droidcam-cli",
	Long: `Webcam starts the DroidCam client against the phone's address. Without
--address the address is probed through adb first.`,
	RunE: runWebcam,
}

func init() {
	rootCmd.AddCommand(webcamCmd)

	addADBFlags(webcamCmd)
	webcamCmd.Flags().String("address", "", "Phone IP address (default: probe through adb)")
	webcamCmd.Flags().Int("port", 0, "DroidCam port (default: 4747)")
	webcamCmd.Flags().String("program", "", "DroidCam client executable")
}

func runWebcam(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	file, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	address, _ := cmd.Flags().GetString("address")
	if address == "" {
		res, err := detect(ctx, newProber(cmd, file))
		if err != nil {
			return err
		}
		address = res.Address
		slog.Info("device address detected", "address", address, "method", res.Method)
	}

	port, _ := cmd.Flags().GetInt("port")
	if port <= 0 {
		port = file.Webcam.Port
	}
	program, _ := cmd.Flags().GetString("program")
	if program == "" {
		program = webcamProgram(file, runner.NewExec())
	}

	return runForeground(ctx, file, lifecycle.Webcam, webcam.Compose(program, address, port))
}

// webcamProgram picks the configured client or the first installed one.
func webcamProgram(file config.File, r runner.Runner) string {
	if file.Webcam.Program != "" {
		return file.Webcam.Program
	}
	return webcam.Resolve(r)
}
