package pipeline

// State is a position in the pipeline lifecycle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateFailed
	StateDestroyed
)

var stateNames = [...]string{
	StateIdle:      "idle",
	StateRunning:   "running",
	StateCompleted: "completed",
	StateFailed:    "failed",
	StateDestroyed: "destroyed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Finished reports whether s is the end of a run.
func (s State) Finished() bool {
	return s == StateCompleted || s == StateFailed
}
