// Package probe defines the outcome of a device address probe.
package probe

// Reason explains why a probe found no address.
type Reason string

const (
	ReasonToolMissing Reason = "tool-missing"
	ReasonNoDevice    Reason = "no-device-attached"
	ReasonNoMatch     Reason = "pattern-not-matched"
	ReasonTimedOut    Reason = "command-timed-out"
	ReasonInProgress  Reason = "already-in-progress"
	ReasonCancelled   Reason = "cancelled"
)

// Method names the strategy that produced an address.
type Method string

const (
	MethodIPAddr   Method = "ip-addr"
	MethodIfconfig Method = "ifconfig"
	MethodGetprop  Method = "getprop"
)

// Result is either Found with an address or NotFound with a reason.
type Result struct {
	Found   bool   `json:"found"`
	Address string `json:"address,omitempty"`
	Method  Method `json:"method,omitempty"`
	Serial  string `json:"serial,omitempty"`
	Reason  Reason `json:"reason,omitempty"`
	Message string `json:"message"`
}

// Found reports a discovered address.
func Found(address string, method Method, serial string) Result {
	return Result{
		Found:   true,
		Address: address,
		Method:  method,
		Serial:  serial,
		Message: "Device address detected: " + address,
	}
}

// NotFound reports a failed probe.
func NotFound(reason Reason, message string) Result {
	return Result{Reason: reason, Message: message}
}
