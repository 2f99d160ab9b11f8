package comm

import "strconv"

// State is a state of the Process machine.
type State int

// States.
const (
	StateIdle State = iota
	StateRead
	StateSingle
	StateContinuous
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRead:
		return "read"
	case StateSingle:
		return "single"
	case StateContinuous:
		return "continuous"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// nextState picks the state after Idle. Inbound data wins over a pending
// one-shot transmission, which wins over the schedule.
func nextState(inbound, singlePending bool) State {
	switch {
	case inbound:
		return StateRead
	case singlePending:
		return StateSingle
	default:
		return StateContinuous
	}
}
