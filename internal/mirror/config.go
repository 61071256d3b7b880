// Package mirror builds scrcpy invocations from a mirroring configuration.
package mirror

import (
	"errors"
	"fmt"
	"strings"
)

// ProgramName is the screen-mirroring executable.
const ProgramName = "scrcpy"

// VideoCodec selects the encoder used on the device.
type VideoCodec string

const (
	CodecDefault VideoCodec = "default"
	CodecH264    VideoCodec = "h264"
	CodecH265    VideoCodec = "h265"
	CodecAV1     VideoCodec = "av1"
)

// VideoSource selects what the device streams.
type VideoSource string

const (
	SourceDisplay VideoSource = "display"
	SourceCamera  VideoSource = "camera"
)

// KeyboardMode selects how key events are injected.
type KeyboardMode string

const (
	KeyboardDefault KeyboardMode = "default"
	KeyboardUHID    KeyboardMode = "uhid"
	KeyboardAOA     KeyboardMode = "aoa"
)

// Orientation locks the capture orientation.
type Orientation string

const (
	OrientationAuto Orientation = "auto"
	Orientation0    Orientation = "0"
	Orientation90   Orientation = "90"
	Orientation180  Orientation = "180"
	Orientation270  Orientation = "270"
)

var orientationSuffix = map[Orientation]string{
	Orientation0:   "@0",
	Orientation90:  "@90",
	Orientation180: "@180",
	Orientation270: "@270",
}

// ParseOrientation accepts "auto", "0".."270" and the degree-sign forms ("90°").
func ParseOrientation(s string) (Orientation, error) {
	v := strings.TrimSuffix(strings.TrimSpace(s), "°")
	switch o := Orientation(v); o {
	case "", OrientationAuto:
		return OrientationAuto, nil
	case Orientation0, Orientation90, Orientation180, Orientation270:
		return o, nil
	}
	return "", fmt.Errorf("invalid orientation %q", s)
}

// IntOption is a numeric value that only takes effect when Enabled is set.
type IntOption struct {
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`
	Value   int  `json:"value" yaml:"value" toml:"value"`
}

// TextOption is a text value that only takes effect when Enabled is set.
type TextOption struct {
	Enabled bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	Value   string `json:"value" yaml:"value" toml:"value"`
}

// Config holds every user-selectable option of a mirroring session.
// Fields are independent of each other.
type Config struct {
	Fullscreen         bool `json:"fullscreen" yaml:"fullscreen" toml:"fullscreen"`
	StayAwake          bool `json:"stay_awake" yaml:"stay_awake" toml:"stay_awake"`
	ShowTouches        bool `json:"show_touches" yaml:"show_touches" toml:"show_touches"`
	DisableScreensaver bool `json:"disable_screensaver" yaml:"disable_screensaver" toml:"disable_screensaver"`
	Borderless         bool `json:"borderless" yaml:"borderless" toml:"borderless"`
	AlwaysOnTop        bool `json:"always_on_top" yaml:"always_on_top" toml:"always_on_top"`
	TurnScreenOff      bool `json:"turn_screen_off" yaml:"turn_screen_off" toml:"turn_screen_off"`
	NoAudio            bool `json:"no_audio" yaml:"no_audio" toml:"no_audio"`
	MouseControl       bool `json:"mouse_control" yaml:"mouse_control" toml:"mouse_control"`
	KeyboardControl    bool `json:"keyboard_control" yaml:"keyboard_control" toml:"keyboard_control"`
	NoControl          bool `json:"no_control" yaml:"no_control" toml:"no_control"`

	VideoCodec   VideoCodec   `json:"video_codec" yaml:"video_codec" toml:"video_codec"`
	VideoSource  VideoSource  `json:"video_source" yaml:"video_source" toml:"video_source"`
	KeyboardMode KeyboardMode `json:"keyboard_mode" yaml:"keyboard_mode" toml:"keyboard_mode"`
	Orientation  Orientation  `json:"orientation" yaml:"orientation" toml:"orientation"`

	MaxFPS        IntOption  `json:"max_fps" yaml:"max_fps" toml:"max_fps"`
	MaxSize       IntOption  `json:"max_size" yaml:"max_size" toml:"max_size"`
	Bitrate       IntOption  `json:"bitrate" yaml:"bitrate" toml:"bitrate"` // Mbps
	Record        TextOption `json:"record" yaml:"record" toml:"record"`
	TCPIP         TextOption `json:"tcpip" yaml:"tcpip" toml:"tcpip"` // host:port
	ScreenTimeout IntOption  `json:"screen_timeout" yaml:"screen_timeout" toml:"screen_timeout"`

	CustomArgs string `json:"custom_args" yaml:"custom_args" toml:"custom_args"`
}

// Value ranges enforced by Clamp.
const (
	MinFPS           = 1
	MaxFPS           = 120
	MinSize          = 480
	MaxSize          = 4000
	MinBitrate       = 1
	MaxBitrate       = 50
	MinScreenTimeout = 0
	MaxScreenTimeout = 3600
)

// DefaultConfig returns the initial state of a fresh session:
// mouse and keyboard control on, every gated option off with its usual value.
func DefaultConfig() Config {
	return Config{
		MouseControl:    true,
		KeyboardControl: true,
		VideoCodec:      CodecDefault,
		VideoSource:     SourceDisplay,
		KeyboardMode:    KeyboardDefault,
		Orientation:     OrientationAuto,
		MaxFPS:          IntOption{Value: 60},
		MaxSize:         IntOption{Value: 1920},
		Bitrate:         IntOption{Value: 8},
		Record:          TextOption{Value: "recording.mp4"},
		ScreenTimeout:   IntOption{Value: 300},
	}
}

// Clamp forces numeric values into their accepted ranges.
// Input collectors call it before Compose.
func (c *Config) Clamp() {
	c.MaxFPS.Value = clamp(c.MaxFPS.Value, MinFPS, MaxFPS)
	c.MaxSize.Value = clamp(c.MaxSize.Value, MinSize, MaxSize)
	c.Bitrate.Value = clamp(c.Bitrate.Value, MinBitrate, MaxBitrate)
	c.ScreenTimeout.Value = clamp(c.ScreenTimeout.Value, MinScreenTimeout, MaxScreenTimeout)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Validate reports enumeration values Compose does not know.
func (c *Config) Validate() error {
	var errs []error
	switch c.VideoCodec {
	case "", CodecDefault, CodecH264, CodecH265, CodecAV1:
	default:
		errs = append(errs, fmt.Errorf("invalid video codec %q", c.VideoCodec))
	}
	switch c.VideoSource {
	case "", SourceDisplay, SourceCamera:
	default:
		errs = append(errs, fmt.Errorf("invalid video source %q", c.VideoSource))
	}
	switch c.KeyboardMode {
	case "", KeyboardDefault, KeyboardUHID, KeyboardAOA:
	default:
		errs = append(errs, fmt.Errorf("invalid keyboard mode %q", c.KeyboardMode))
	}
	if _, err := ParseOrientation(string(c.Orientation)); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
