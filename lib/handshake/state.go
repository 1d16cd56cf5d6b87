package handshake

import "fmt"

// State is a step of the connection state machine.
type State int

const (
	StateAwaitHeader State = iota
	StateAwaitRequest
	StateBuiltResponse
	StateSent
	StateFailed
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StateAwaitHeader:
		return "AwaitHeader"
	case StateAwaitRequest:
		return "AwaitRequest"
	case StateBuiltResponse:
		return "BuiltResponse"
	case StateSent:
		return "Sent"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateSent || s == StateFailed
}
