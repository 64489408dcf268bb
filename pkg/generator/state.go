package generator

// State is the lifecycle state of a Generator.
type State int32

const (
	// StateIdle means no item was requested yet and no producer is running.
	StateIdle State = iota

	// StateRunning means the producer goroutine has been started.
	StateRunning

	// StateFinished means the producer returned without error.
	StateFinished

	// StateFailed means the producer returned an error or panicked.
	StateFailed

	// StateClosed means Close was called before the producer terminated on its own.
	StateClosed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is one of the sticky end states.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateFailed || s == StateClosed
}
