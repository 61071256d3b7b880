package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jandubois/droidlaunch/internal/mirror"
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Print the scrcpy command line for the given settings",
	Example: `  droidlaunch compose --fullscreen --max-fps 30
  droidlaunch compose --profile desk.yaml --json`,
	RunE: runCompose,
}

func init() {
	rootCmd.AddCommand(composeCmd)

	addMirrorFlags(composeCmd)
	composeCmd.Flags().Bool("json", false, "Print the tokens as a JSON array")
	composeCmd.Flags().String("program", mirror.ProgramName, "Program token to emit first")
}

func runCompose(cmd *cobra.Command, args []string) error {
	file, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg, err := mirrorConfig(cmd, file)
	if err != nil {
		return err
	}

	program, _ := cmd.Flags().GetString("program")
	command := mirror.ComposeWith(program, cfg)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return outputJSON(cmd, command)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), command.String())
	return err
}
