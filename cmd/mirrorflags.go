package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jandubois/droidlaunch/internal/config"
	"github.com/jandubois/droidlaunch/internal/mirror"
)

var boolFlags = []struct {
	name  string
	usage string
	field func(*mirror.Config) *bool
}{
	{"fullscreen", "Start in fullscreen (-f)", func(c *mirror.Config) *bool { return &c.Fullscreen }},
	{"stay-awake", "Keep the device awake (-w)", func(c *mirror.Config) *bool { return &c.StayAwake }},
	{"show-touches", "Show physical touches (-t)", func(c *mirror.Config) *bool { return &c.ShowTouches }},
	{"disable-screensaver", "Disable the host screensaver (-S)", func(c *mirror.Config) *bool { return &c.DisableScreensaver }},
	{"borderless", "Borderless window (-b)", func(c *mirror.Config) *bool { return &c.Borderless }},
	{"always-on-top", "Keep the window on top (-T)", func(c *mirror.Config) *bool { return &c.AlwaysOnTop }},
	{"turn-screen-off", "Turn the device screen off (-o)", func(c *mirror.Config) *bool { return &c.TurnScreenOff }},
	{"no-audio", "Disable audio forwarding", func(c *mirror.Config) *bool { return &c.NoAudio }},
	{"mouse-control", "Forward the mouse (-M)", func(c *mirror.Config) *bool { return &c.MouseControl }},
	{"keyboard-control", "Forward the keyboard (-K)", func(c *mirror.Config) *bool { return &c.KeyboardControl }},
	{"no-control", "Mirror read-only (-n)", func(c *mirror.Config) *bool { return &c.NoControl }},
}

var intFlags = []struct {
	name  string
	usage string
	field func(*mirror.Config) *mirror.IntOption
}{
	{"max-fps", "Limit the frame rate (1-120)", func(c *mirror.Config) *mirror.IntOption { return &c.MaxFPS }},
	{"max-size", "Limit the video dimension (480-4000)", func(c *mirror.Config) *mirror.IntOption { return &c.MaxSize }},
	{"bitrate", "Video bitrate in Mbps (1-50)", func(c *mirror.Config) *mirror.IntOption { return &c.Bitrate }},
	{"screen-timeout", "Screen-off timeout in seconds (0-3600)", func(c *mirror.Config) *mirror.IntOption { return &c.ScreenTimeout }},
}

// addMirrorFlags registers one flag per mirror setting. Only flags given on
// the command line override the profile or config file.
func addMirrorFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	defaults := mirror.DefaultConfig()
	for _, b := range boolFlags {
		f.Bool(b.name, *b.field(&defaults), b.usage)
	}
	for _, i := range intFlags {
		f.Int(i.name, i.field(&defaults).Value, i.usage+"; setting it enables the option")
	}
	f.String("video-codec", string(mirror.CodecDefault), "Video codec (default, h264, h265, av1)")
	f.String("video-source", string(mirror.SourceDisplay), "Video source (display, camera)")
	f.String("keyboard-mode", string(mirror.KeyboardDefault), "Keyboard injection (default, uhid, aoa)")
	f.String("orientation", string(mirror.OrientationAuto), "Capture orientation (auto, 0, 90, 180, 270)")
	f.String("record", "", "Record the session to this file")
	f.String("tcpip", "", "Connect over TCP/IP to host:port")
	f.String("custom-args", "", "Extra arguments appended verbatim")
	f.String("profile", "", "Mirror profile file, .yaml or .toml")
}

// mirrorConfig builds the mirror settings: profile or config file first,
// then explicit flags.
func mirrorConfig(cmd *cobra.Command, file config.File) (mirror.Config, error) {
	cfg := file.Mirror
	if profile, _ := cmd.Flags().GetString("profile"); profile != "" {
		var err error
		if cfg, err = config.LoadProfile(profile); err != nil {
			return mirror.Config{}, err
		}
	}

	f := cmd.Flags()
	for _, b := range boolFlags {
		if f.Changed(b.name) {
			*b.field(&cfg), _ = f.GetBool(b.name)
		}
	}
	for _, i := range intFlags {
		if f.Changed(i.name) {
			v, _ := f.GetInt(i.name)
			*i.field(&cfg) = mirror.IntOption{Enabled: true, Value: v}
		}
	}

	if f.Changed("video-codec") {
		v, _ := f.GetString("video-codec")
		cfg.VideoCodec = mirror.VideoCodec(v)
	}
	if f.Changed("video-source") {
		v, _ := f.GetString("video-source")
		cfg.VideoSource = mirror.VideoSource(v)
	}
	if f.Changed("keyboard-mode") {
		v, _ := f.GetString("keyboard-mode")
		cfg.KeyboardMode = mirror.KeyboardMode(v)
	}
	if f.Changed("orientation") {
		v, _ := f.GetString("orientation")
		o, err := mirror.ParseOrientation(v)
		if err != nil {
			return mirror.Config{}, err
		}
		cfg.Orientation = o
	}
	if f.Changed("record") {
		v, _ := f.GetString("record")
		cfg.Record = mirror.TextOption{Enabled: v != "", Value: v}
	}
	if f.Changed("tcpip") {
		v, _ := f.GetString("tcpip")
		cfg.TCPIP = mirror.TextOption{Enabled: v != "", Value: v}
	}
	if f.Changed("custom-args") {
		cfg.CustomArgs, _ = f.GetString("custom-args")
	}

	if err := cfg.Validate(); err != nil {
		return mirror.Config{}, fmt.Errorf("invalid mirror settings: %w", err)
	}
	cfg.Clamp()
	return cfg, nil
}
