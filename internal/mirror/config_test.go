package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	// Control toggles start enabled; gated values are present but off.
	assert.Equal(t, Command{"scrcpy", "-M", "-K"}, Compose(cfg))
	assert.Equal(t, 60, cfg.MaxFPS.Value)
	assert.Equal(t, 1920, cfg.MaxSize.Value)
	assert.Equal(t, 8, cfg.Bitrate.Value)
	assert.Equal(t, "recording.mp4", cfg.Record.Value)
	assert.Equal(t, 300, cfg.ScreenTimeout.Value)
}

func TestClamp(t *testing.T) {
	cfg := Config{
		MaxFPS:        IntOption{Value: 0},
		MaxSize:       IntOption{Value: 10000},
		Bitrate:       IntOption{Value: 51},
		ScreenTimeout: IntOption{Value: -5},
	}
	cfg.Clamp()

	assert.Equal(t, MinFPS, cfg.MaxFPS.Value)
	assert.Equal(t, MaxSize, cfg.MaxSize.Value)
	assert.Equal(t, MaxBitrate, cfg.Bitrate.Value)
	assert.Equal(t, MinScreenTimeout, cfg.ScreenTimeout.Value)

	inRange := Config{MaxFPS: IntOption{Value: 30}, MaxSize: IntOption{Value: 1024}, Bitrate: IntOption{Value: 4}, ScreenTimeout: IntOption{Value: 60}}
	want := inRange
	inRange.Clamp()
	assert.Equal(t, want, inRange)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "zero config", cfg: Config{}},
		{name: "bad codec", cfg: Config{VideoCodec: "vp9"}, wantErr: `invalid video codec "vp9"`},
		{name: "bad source", cfg: Config{VideoSource: "screen"}, wantErr: `invalid video source "screen"`},
		{name: "bad keyboard", cfg: Config{KeyboardMode: "hid"}, wantErr: `invalid keyboard mode "hid"`},
		{name: "bad orientation", cfg: Config{Orientation: "45"}, wantErr: `invalid orientation "45"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseOrientation(t *testing.T) {
	tests := []struct {
		input   string
		want    Orientation
		wantErr bool
	}{
		{"", OrientationAuto, false},
		{"auto", OrientationAuto, false},
		{"0", Orientation0, false},
		{"0°", Orientation0, false},
		{" 90° ", Orientation90, false},
		{"180", Orientation180, false},
		{"270°", Orientation270, false},
		{"360", "", true},
		{"left", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOrientation(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
