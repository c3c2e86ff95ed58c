package job

// State is the lifecycle stage of a job.
type State int32

const (
	Created State = iota
	Running
	Completed
	Cancelled
	Failed
)

var stateNames = [...]string{
	Created:   "created",
	Running:   "running",
	Completed: "completed",
	Cancelled: "cancelled",
	Failed:    "failed",
}

// String returns the lower-case name of the state.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	return s == Completed || s == Cancelled || s == Failed
}
