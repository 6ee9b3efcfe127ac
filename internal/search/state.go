package search

// State is the connector lifecycle. Transitions only move forward:
// Unstarted to Loading, then Loading to Ready or Failed.
type State int

const (
	StateUnstarted State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition will happen.
func (s State) Terminal() bool {
	return s == StateReady || s == StateFailed
}
