package prober

import (
	"net/netip"
	"regexp"
	"strings"
)

// StateReady is the adb state of an online, authorized device.
const StateReady = "device"

// Device is one entry of `adb devices`.
type Device struct {
	Serial string `json:"serial"`
	State  string `json:"state"`
}

// Ready reports whether adb can talk to the device.
func (d Device) Ready() bool {
	return d.State == StateReady
}

// ParseDevices reads `adb devices` output. The header line and daemon
// status lines ("* daemon started successfully") are skipped.
func ParseDevices(output string) []Device {
	var devices []Device
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "List of devices") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		devices = append(devices, Device{Serial: fields[0], State: fields[1]})
	}
	return devices
}

func pickDevice(devices []Device, serial string) (string, bool) {
	for _, d := range devices {
		if !d.Ready() {
			continue
		}
		if serial == "" || d.Serial == serial {
			return d.Serial, true
		}
	}
	return "", false
}

const ipv4 = `(\d{1,3}(?:\.\d{1,3}){3})`

var (
	ipAddrPattern   = regexp.MustCompile(`inet\s+` + ipv4)
	ifconfigPattern = regexp.MustCompile(`inet addr:` + ipv4)
	bareIPv4Pattern = regexp.MustCompile(`^` + ipv4 + `$`)
)

func matchIPAddr(output string) (string, bool) {
	return firstIPv4(ipAddrPattern, output)
}

func matchIfconfig(output string) (string, bool) {
	return firstIPv4(ifconfigPattern, output)
}

func matchBareIPv4(output string) (string, bool) {
	return firstIPv4(bareIPv4Pattern, strings.TrimSpace(output))
}

func firstIPv4(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	addr, err := netip.ParseAddr(m[1])
	if err != nil || !addr.Is4() {
		return "", false
	}
	return addr.String(), true
}
