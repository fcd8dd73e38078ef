package listview

// State is where a list view is in its fetch lifecycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateRetrying
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateRetrying:
		return "retrying"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Busy reports whether a request is in flight.
func (s State) Busy() bool { return s == StateLoading || s == StateRetrying }
