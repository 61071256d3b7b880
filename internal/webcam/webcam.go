// Package webcam builds the command line of the phone webcam bridge.
package webcam

import (
	"net"
	"strconv"
	"strings"

	"github.com/jandubois/droidlaunch/internal/runner"
)

const (
	DefaultProgram = "droidcam-cli"
	DefaultPort    = 4747
)

// Candidates are the executable names the bridge is installed under, in
// lookup order.
var Candidates = []string{"droidcam", "droidcam-cli", "droidcamapp"}

// Compose returns [program, host, port]. A "host:port" address is reduced to
// its host; a non-positive port means DefaultPort.
func Compose(program, address string, port int) []string {
	if program == "" {
		program = DefaultProgram
	}
	if port <= 0 {
		port = DefaultPort
	}
	return []string{program, Host(address), strconv.Itoa(port)}
}

// Host strips any port and surrounding whitespace from address.
func Host(address string) string {
	address = strings.TrimSpace(address)
	if host, _, err := net.SplitHostPort(address); err == nil {
		return host
	}
	return address
}

// Resolve finds the first installed candidate, falling back to DefaultProgram
// so the start error names a sensible binary.
func Resolve(r runner.Runner) string {
	if path, err := runner.FirstInstalled(r, Candidates...); err == nil {
		return path
	}
	return DefaultProgram
}
