// Package installer makes sure the mirroring tool is available.
package installer

import (
	"errors"
	"fmt"
	"strings"
)

// DownloadURL is the latest Windows release archive.
const DownloadURL = "https://github.com/Genymobile/scrcpy/releases/latest/download/scrcpy-win64.zip"

var (
	ErrManualInstall       = errors.New("manual installation required")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrUnsafePath          = errors.New("archive entry escapes target directory")
)

// Method is how a platform gets the tool.
type Method string

const (
	MethodDownload Method = "download" // fetch and extract a release archive
	MethodDelegate Method = "delegate" // leave it to the system package manager
)

// Plan is the install strategy for one platform.
type Plan struct {
	GOOS         string `json:"goos"`
	Method       Method `json:"method"`
	URL          string `json:"url,omitempty"`
	Filename     string `json:"filename,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

var linuxInstructions = strings.Join([]string{
	"On Linux, install scrcpy with your package manager:",
	"  Ubuntu/Debian: sudo apt install scrcpy",
	"  Fedora: sudo dnf install scrcpy",
	"  Arch: sudo pacman -S scrcpy",
}, "\n")

const darwinInstructions = "On macOS, install scrcpy with Homebrew:\n  brew install scrcpy"

// PlanFor returns the plan for goos.
func PlanFor(goos string) (Plan, error) {
	switch goos {
	case "windows":
		return Plan{GOOS: goos, Method: MethodDownload, URL: DownloadURL, Filename: "scrcpy-win64.zip"}, nil
	case "linux":
		return Plan{GOOS: goos, Method: MethodDelegate, Instructions: linuxInstructions}, nil
	case "darwin":
		return Plan{GOOS: goos, Method: MethodDelegate, Instructions: darwinInstructions}, nil
	default:
		return Plan{GOOS: goos}, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
	}
}
