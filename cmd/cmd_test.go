package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jandubois/droidlaunch/internal/config"
	"github.com/jandubois/droidlaunch/internal/mirror"
	"github.com/jandubois/droidlaunch/internal/reach"
)

func newMirrorCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addMirrorFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestMirrorConfigFromFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want mirror.Command
	}{
		{"defaults", nil, mirror.Command{"scrcpy", "-M", "-K"}},
		{"toggles", []string{"--fullscreen", "--no-audio", "--mouse-control=false"}, mirror.Command{"scrcpy", "-K", "-f", "--no-audio"}},
		{"valued flags enable their option", []string{"--max-fps", "30", "--bitrate", "16"}, mirror.Command{"scrcpy", "-M", "-K", "--max-fps", "30", "-b", "16M"}},
		{"values are clamped", []string{"--max-fps", "500"}, mirror.Command{"scrcpy", "-M", "-K", "--max-fps", "120"}},
		{"tcpip and record", []string{"--tcpip", "192.168.1.55:5555", "--record", "out.mp4"}, mirror.Command{"scrcpy", "--tcpip=192.168.1.55:5555", "-M", "-K", "--record", "out.mp4"}},
		{"orientation with degree sign", []string{"--orientation", "90°"}, mirror.Command{"scrcpy", "-M", "-K", "--capture-orientation=@90"}},
		{"enumerations", []string{"--video-codec", "h265", "--video-source", "camera", "--keyboard-mode", "uhid"}, mirror.Command{"scrcpy", "--video-codec", "h265", "--video-source=camera", "-M", "-K", "--keyboard=uhid"}},
		{"custom args last", []string{"--custom-args", "--window-title 'x' -f", "--fullscreen"}, mirror.Command{"scrcpy", "-M", "-K", "-f", "--window-title", "'x'", "-f"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := mirrorConfig(newMirrorCmd(t, tt.args...), config.Default())
			require.NoError(t, err)
			assert.Equal(t, tt.want, mirror.Compose(cfg))
		})
	}
}

func TestMirrorConfigErrors(t *testing.T) {
	_, err := mirrorConfig(newMirrorCmd(t, "--orientation", "45"), config.Default())
	assert.ErrorContains(t, err, "invalid orientation")

	_, err = mirrorConfig(newMirrorCmd(t, "--video-codec", "vp9"), config.Default())
	assert.ErrorContains(t, err, "invalid mirror settings")
}

func TestMirrorConfigProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desk.toml")
	require.NoError(t, os.WriteFile(path, []byte("always_on_top = true\nborderless = true\n"), 0644))

	cfg, err := mirrorConfig(newMirrorCmd(t, "--profile", path, "--borderless=false"), config.Default())
	require.NoError(t, err)
	assert.True(t, cfg.AlwaysOnTop)
	assert.False(t, cfg.Borderless, "flags override the profile")
}

func TestComposeCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"compose", "--json", "--stay-awake", "--log-level", "error"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, Execute())
	assert.JSONEq(t, `["scrcpy", "-M", "-K", "-w"]`, out.String())
}

func TestProgressPrinter(t *testing.T) {
	var errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetErr(&errOut)

	report := progressPrinter(cmd)
	for done := int64(0); done <= 1000; done += 50 {
		report(done, 1000)
	}
	report(10, 0)

	out := errOut.String()
	assert.Equal(t, 11, strings.Count(out, "\r"), out)
	assert.Contains(t, out, "(100%)")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestCheckReach(t *testing.T) {
	failing := func(context.Context, string, reach.Options) (reach.Result, error) {
		return reach.Result{}, errors.New("socket: operation not permitted")
	}
	r := checkReach(context.Background(), failing, "192.168.1.20", reach.Options{})
	require.NotNil(t, r)
	assert.Equal(t, "192.168.1.20", r.Host)
	assert.False(t, r.Reachable)
	assert.Equal(t, "socket: operation not permitted", r.Error)

	ok := func(_ context.Context, address string, _ reach.Options) (reach.Result, error) {
		return reach.Result{Host: address, Sent: 1, Received: 1, Reachable: true}, nil
	}
	r = checkReach(context.Background(), ok, "192.168.1.20", reach.Options{})
	assert.True(t, r.Reachable)
	assert.Empty(t, r.Error)
}

func TestDetectOutputKeepsAddressWhenPingFails(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(&buf)

	out := probeOutput{Reach: &reach.Result{Host: "192.168.1.20", Error: "timeout"}}
	out.Found = true
	out.Address = "192.168.1.20"
	require.NoError(t, outputJSON(cmd, out))

	assert.Contains(t, buf.String(), `"address": "192.168.1.20"`)
	assert.Contains(t, buf.String(), `"error": "timeout"`)
}
