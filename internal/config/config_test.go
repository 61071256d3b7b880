package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jandubois/droidlaunch/internal/mirror"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_TOKEN", "")
	t.Setenv("ADB_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "adb", cfg.ADB.Path)
	assert.Equal(t, 5*time.Second, cfg.ADB.Timeout)
	assert.Equal(t, 4747, cfg.Webcam.Port)
	assert.True(t, cfg.Mirror.MouseControl)
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("AUTH_TOKEN", "")
	path := writeFile(t, "droidlaunch.yaml", `
mirror:
  fullscreen: true
  video_codec: h265
  max_fps:
    enabled: true
    value: 30
adb:
  serial: R58M123
  timeout: 2s
serve:
  addr: ":9000"
notify:
  states: [failed]
  ntfy:
    topic: phone
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Mirror.Fullscreen)
	assert.Equal(t, mirror.CodecH265, cfg.Mirror.VideoCodec)
	assert.Equal(t, mirror.IntOption{Enabled: true, Value: 30}, cfg.Mirror.MaxFPS)
	// Untouched fields keep their defaults.
	assert.True(t, cfg.Mirror.MouseControl)
	assert.Equal(t, 1920, cfg.Mirror.MaxSize.Value)

	assert.Equal(t, "R58M123", cfg.ADB.Serial)
	assert.Equal(t, 2*time.Second, cfg.ADB.Timeout)
	assert.Equal(t, "wlan0", cfg.ADB.Interface)
	assert.Equal(t, ":9000", cfg.Serve.Addr)
	assert.Equal(t, []string{"failed"}, cfg.Notify.States)
	require.NotNil(t, cfg.Notify.Ntfy)
	assert.Equal(t, "phone", cfg.Notify.Ntfy.Topic)

	opts := cfg.ProberOptions()
	assert.Equal(t, "R58M123", opts.Serial)
	assert.Equal(t, 2*time.Second, opts.StepTimeout)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "droidlaunch.toml", `
[mirror]
no_audio = true
orientation = "90"

[mirror.tcpip]
enabled = true
value = "192.168.1.55:5555"

[webcam]
port = 4848

[serve]
auth_token = "from-file"
`)
	t.Setenv("AUTH_TOKEN", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Mirror.NoAudio)
	assert.Equal(t, mirror.Orientation90, cfg.Mirror.Orientation)
	assert.Equal(t, mirror.TextOption{Enabled: true, Value: "192.168.1.55:5555"}, cfg.Mirror.TCPIP)
	assert.Equal(t, 4848, cfg.Webcam.Port)
	assert.Equal(t, "from-file", cfg.Serve.AuthToken)
}

func TestLoadEnvFallbacks(t *testing.T) {
	t.Setenv("AUTH_TOKEN", "secret")
	t.Setenv("ADB_PATH", "/opt/platform-tools/adb")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Serve.AuthToken)
	assert.Equal(t, "/opt/platform-tools/adb", cfg.ADB.Path)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"unknown extension", "config.json", "{}", "unsupported config format"},
		{"unknown yaml key", "config.yaml", "mirror:\n  fulscreen: true\n", "fulscreen"},
		{"unknown toml key", "config.toml", "[adb]\nserail = \"x\"\n", "unknown key adb.serail"},
		{"bad yaml", "config.yml", "mirror: [", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			assert.ErrorContains(t, err, tt.want)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestLoadProfile(t *testing.T) {
	path := writeFile(t, "desk.yaml", "always_on_top: true\nbitrate:\n  enabled: true\n  value: 16\n")
	cfg, err := LoadProfile(path)
	require.NoError(t, err)
	assert.True(t, cfg.AlwaysOnTop)
	assert.Equal(t, mirror.IntOption{Enabled: true, Value: 16}, cfg.Bitrate)
	assert.True(t, cfg.KeyboardControl)

	empty, err := LoadProfile(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, mirror.DefaultConfig(), empty)
}
