package monitor

import "github.com/jwolf02/Monitor/internal/app"

// State is the lifecycle state of a Monitor.
type State int

const (
	// StateStopped means no session is active.
	StateStopped State = iota

	// StateStarting means Start was called and the session is opening.
	StateStarting

	// StateRunning means the session loop is processing device output.
	StateRunning

	// StateStopping means Stop was called and shutdown is in progress.
	StateStopping

	// StateCrashed means the session terminated with an error. Err
	// reports the cause.
	StateCrashed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// CanStart reports whether Start may be called in this state.
func (s State) CanStart() bool {
	return s == StateStopped || s == StateCrashed
}

// CanStop reports whether Stop has work to do in this state.
func (s State) CanStop() bool {
	return s == StateStarting || s == StateRunning
}

// IsRunning reports whether the session loop is active.
func (s State) IsRunning() bool {
	return s == StateRunning
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}
