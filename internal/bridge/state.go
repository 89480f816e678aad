package bridge

// State is the connection state of a Manager.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
	Teardown
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Teardown:
		return "teardown"
	default:
		return "unknown"
	}
}
