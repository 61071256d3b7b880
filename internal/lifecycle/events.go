package lifecycle

import "time"

// State is a lifecycle transition.
type State string

const (
	StateStarted State = "started"
	StateExited  State = "exited"  // exited on its own with code 0
	StateFailed  State = "failed"  // failed to start or exited nonzero
	StateStopped State = "stopped" // ended by Stop
)

// Event is emitted on every state change of a managed process.
type Event struct {
	Tool     Tool      `json:"tool"`
	RunID    string    `json:"run_id"`
	State    State     `json:"state"`
	Command  []string  `json:"command,omitempty"`
	ExitCode int       `json:"exit_code"`
	Message  string    `json:"message,omitempty"`
	At       time.Time `json:"at"`
}

// Notifier receives state changes. Notify must not block for long.
type Notifier interface {
	Notify(ev Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(ev Event) { f(ev) }
