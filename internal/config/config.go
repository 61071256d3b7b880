// Package config loads the launcher's configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jandubois/droidlaunch/internal/mirror"
	"github.com/jandubois/droidlaunch/internal/notify"
	"github.com/jandubois/droidlaunch/internal/prober"
	"github.com/jandubois/droidlaunch/internal/webcam"
)

// File is the on-disk configuration. Every section is optional.
type File struct {
	Mirror mirror.Config `yaml:"mirror" toml:"mirror"`
	Webcam WebcamConfig  `yaml:"webcam" toml:"webcam"`
	ADB    ADBConfig     `yaml:"adb" toml:"adb"`
	Serve  ServeConfig   `yaml:"serve" toml:"serve"`
	Notify NotifyConfig  `yaml:"notify" toml:"notify"`
}

// WebcamConfig holds the webcam bridge settings.
type WebcamConfig struct {
	Program string `yaml:"program" toml:"program"` // empty means first installed candidate
	Port    int    `yaml:"port" toml:"port"`
}

// ADBConfig holds the address probe settings.
type ADBConfig struct {
	Path      string        `yaml:"path" toml:"path"`
	Interface string        `yaml:"interface" toml:"interface"`
	Serial    string        `yaml:"serial" toml:"serial"`
	Timeout   time.Duration `yaml:"timeout" toml:"timeout"`
}

// ServeConfig holds configuration for the control service.
type ServeConfig struct {
	Addr       string        `yaml:"addr" toml:"addr"`
	AuthToken  string        `yaml:"auth_token" toml:"auth_token"`
	RateLimit  float64       `yaml:"rate_limit" toml:"rate_limit"` // requests per second
	Burst      int           `yaml:"burst" toml:"burst"`
	AddressTTL time.Duration `yaml:"address_ttl" toml:"address_ttl"`
	Backlog    int           `yaml:"backlog" toml:"backlog"` // log lines kept for new subscribers
}

// NotifyConfig selects notification channels.
type NotifyConfig struct {
	Log    bool               `yaml:"log" toml:"log"`
	States []string           `yaml:"states" toml:"states"`
	Ntfy   *notify.NtfyConfig `yaml:"ntfy" toml:"ntfy"`
}

// Default returns the configuration used when no file is given.
func Default() File {
	return File{
		Mirror: mirror.DefaultConfig(),
		Webcam: WebcamConfig{Port: webcam.DefaultPort},
		ADB: ADBConfig{
			Path:      prober.DefaultADB,
			Interface: prober.DefaultInterface,
			Timeout:   prober.DefaultStepTimeout,
		},
		Serve: ServeConfig{
			Addr:       "127.0.0.1:8470",
			RateLimit:  10,
			Burst:      20,
			AddressTTL: 10 * time.Minute,
			Backlog:    500,
		},
		Notify: NotifyConfig{Log: true},
	}
}

// Load reads path over the defaults and applies environment fallbacks.
// An empty path yields the defaults.
func Load(path string) (File, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return File{}, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadProfile reads a mirror profile over mirror.DefaultConfig.
func LoadProfile(path string) (mirror.Config, error) {
	cfg := mirror.DefaultConfig()
	if err := decodeFile(path, &cfg); err != nil {
		return mirror.Config{}, err
	}
	return cfg, nil
}

func (f *File) applyEnv() {
	if f.Serve.AuthToken == "" {
		f.Serve.AuthToken = os.Getenv("AUTH_TOKEN")
	}
	if v := os.Getenv("ADB_PATH"); v != "" && (f.ADB.Path == "" || f.ADB.Path == prober.DefaultADB) {
		f.ADB.Path = v
	}
}

// ProberOptions converts the adb section.
func (f *File) ProberOptions() prober.Options {
	return prober.Options{
		ADBPath:     f.ADB.Path,
		Interface:   f.ADB.Interface,
		Serial:      f.ADB.Serial,
		StepTimeout: f.ADB.Timeout,
	}
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("parse %s: unknown key %s", path, undecoded[0])
		}
	default:
		return fmt.Errorf("unsupported config format %q (want .yaml, .yml or .toml)", ext)
	}
	return nil
}
