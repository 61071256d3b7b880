package mirror

import (
	"strconv"
	"strings"
)

// Command is an ordered invocation; element 0 is the program.
type Command []string

// Program returns the executable token.
func (c Command) Program() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Args returns every token after the program.
func (c Command) Args() []string {
	if len(c) < 2 {
		return nil
	}
	return c[1:]
}

// String renders the command for display, quoting tokens a shell would split.
func (c Command) String() string {
	parts := make([]string, len(c))
	for i, tok := range c {
		parts[i] = quote(tok)
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`|&;<>()*?[]#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Compose builds the scrcpy invocation for cfg.
func Compose(cfg Config) Command {
	return ComposeWith(ProgramName, cfg)
}

// ComposeWith is Compose with a caller-chosen program token, such as a
// resolved executable path. Flag order is fixed.
func ComposeWith(program string, cfg Config) Command {
	cmd := Command{program}

	if cfg.TCPIP.Enabled && cfg.TCPIP.Value != "" {
		cmd = append(cmd, "--tcpip="+cfg.TCPIP.Value)
	}

	if cfg.VideoCodec != "" && cfg.VideoCodec != CodecDefault {
		cmd = append(cmd, "--video-codec", string(cfg.VideoCodec))
	}
	if cfg.VideoSource == SourceCamera {
		cmd = append(cmd, "--video-source=camera")
	}

	// no-control does not suppress -M/-K; all three may be emitted.
	if cfg.MouseControl {
		cmd = append(cmd, "-M")
	}
	if cfg.KeyboardControl {
		cmd = append(cmd, "-K")
		if cfg.KeyboardMode != "" && cfg.KeyboardMode != KeyboardDefault {
			cmd = append(cmd, "--keyboard="+string(cfg.KeyboardMode))
		}
	}
	if cfg.NoControl {
		cmd = append(cmd, "-n")
	}

	if cfg.MaxSize.Enabled {
		cmd = append(cmd, "-m", strconv.Itoa(cfg.MaxSize.Value))
	}
	if cfg.MaxFPS.Enabled {
		cmd = append(cmd, "--max-fps", strconv.Itoa(cfg.MaxFPS.Value))
	}
	if cfg.Bitrate.Enabled {
		cmd = append(cmd, "-b", strconv.Itoa(cfg.Bitrate.Value)+"M")
	}
	if cfg.Record.Enabled && cfg.Record.Value != "" {
		cmd = append(cmd, "--record", cfg.Record.Value)
	}
	if cfg.ScreenTimeout.Enabled {
		cmd = append(cmd, "--screen-off-timeout", strconv.Itoa(cfg.ScreenTimeout.Value))
	}

	if o, err := ParseOrientation(string(cfg.Orientation)); err == nil && o != OrientationAuto {
		cmd = append(cmd, "--capture-orientation="+orientationSuffix[o])
	}

	display := []struct {
		on   bool
		flag string
	}{
		{cfg.Fullscreen, "-f"},
		{cfg.StayAwake, "-w"},
		{cfg.ShowTouches, "-t"},
		{cfg.DisableScreensaver, "-S"},
		{cfg.Borderless, "-b"},
		{cfg.AlwaysOnTop, "-T"},
		{cfg.TurnScreenOff, "-o"},
		{cfg.NoAudio, "--no-audio"},
	}
	for _, d := range display {
		if d.on {
			cmd = append(cmd, d.flag)
		}
	}

	return append(cmd, strings.Fields(cfg.CustomArgs)...)
}
