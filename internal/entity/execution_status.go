package entity

// ExecutionStatus is the lifecycle state of a cell's most recent run.
// Transitions are validated through CanTransition before any mutation is
// persisted, so a cell can never hold an invalid combination such as
// Running with a result already set.
type ExecutionStatus string

const (
	StatusNotRun  ExecutionStatus = "NotRun"
	StatusRunning ExecutionStatus = "Running"
	StatusSuccess ExecutionStatus = "Success"
	StatusError   ExecutionStatus = "Error"
)

// statusTransitions is the explicit transition table:
// NotRun -> Running -> Success | Error, and terminal states re-enter Running.
var statusTransitions = map[ExecutionStatus][]ExecutionStatus{
	StatusNotRun:  {StatusRunning},
	StatusRunning: {StatusSuccess, StatusError},
	StatusSuccess: {StatusRunning},
	StatusError:   {StatusRunning},
}

func (s ExecutionStatus) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// IsTerminal reports whether the status is stable until the next run.
func (s ExecutionStatus) IsTerminal() bool {
	return s == StatusSuccess || s == StatusError
}

func (s ExecutionStatus) CanTransition(to ExecutionStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}
