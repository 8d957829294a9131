package http

// State is the phase of the most recent call on a client
type State int

// Call phases. A call moves Idle → Building → Sending → Parsing → Idle;
// Failed and ConnectFailed are terminal until the next call.
const (
	StateIdle State = iota
	StateBuilding
	StateSending
	StateParsing
	StateFailed
	StateConnectFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuilding:
		return "building"
	case StateSending:
		return "sending"
	case StateParsing:
		return "parsing"
	case StateFailed:
		return "failed"
	case StateConnectFailed:
		return "connect-failed"
	}
	return "unknown"
}
