package cmd

import (
	"fmt"
	"log/slog"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/jandubois/droidlaunch/internal/installer"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Make sure scrcpy is installed",
	Long: `Install checks PATH and the install directory for scrcpy. On Windows a
missing scrcpy is downloaded from the latest GitHub release and extracted; on
Linux and macOS the package manager command to run is printed instead.

Running it again once scrcpy is present downloads nothing.`,
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().String("dir", "scrcpy", "Directory to extract into")
	installCmd.Flags().String("os", "", "Target platform (default: this one)")
	installCmd.Flags().Bool("json", false, "Print the result as JSON")
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	dir, _ := cmd.Flags().GetString("dir")
	goos, _ := cmd.Flags().GetString("os")

	inst := installer.New(installer.Options{GOOS: goos, Dir: dir, Progress: progressPrinter(cmd)})
	res, err := inst.Ensure(ctx)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return outputJSON(cmd, res)
	}

	out := cmd.OutOrStdout()
	switch res.Outcome {
	case installer.AlreadyPresent:
		fmt.Fprintf(out, "scrcpy is already installed: %s\n", res.Path)
	case installer.Installed:
		fmt.Fprintf(out, "scrcpy downloaded (%s). Add %s to PATH.\n", units.HumanSize(float64(res.Bytes)), res.Dir)
	}
	return nil
}

// progressPrinter reports download progress on stderr in 10% steps.
func progressPrinter(cmd *cobra.Command) func(done, total int64) {
	last := int64(-1)
	return func(done, total int64) {
		if total <= 0 {
			return
		}
		step := done * 10 / total
		if step == last {
			return
		}
		last = step
		pct := step * 10
		fmt.Fprintf(cmd.ErrOrStderr(), "\rdownloading %s / %s (%d%%)",
			units.HumanSize(float64(done)), units.HumanSize(float64(total)), pct)
		if pct == 100 {
			fmt.Fprintln(cmd.ErrOrStderr())
			slog.Debug("download finished", "bytes", done)
		}
	}
}
