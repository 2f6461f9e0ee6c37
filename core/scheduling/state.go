package scheduling

// Mode selects the objective of a formulation.
type Mode int

const (
	// ModeMinimizeDrivers minimizes the number of working drivers in an
	// oversized pool.
	ModeMinimizeDrivers Mode = iota
	// ModeMinimizeWorkingTime minimizes idle time between shifts for a fixed
	// number of mandatory drivers.
	ModeMinimizeWorkingTime
)

func (m Mode) String() string {
	if m == ModeMinimizeWorkingTime {
		return "minimize_working_time"
	}
	return "minimize_drivers"
}

// State tracks the orchestrator progress.
type State int

const (
	StateIdle State = iota
	StatePhase1Solving
	StatePhase1Failed
	StatePhase1Solved
	StatePhase2Solving
	StatePhase2Failed
	StatePhase2Solved
)

func (s State) String() string {
	switch s {
	case StatePhase1Solving:
		return "phase1_solving"
	case StatePhase1Failed:
		return "phase1_failed"
	case StatePhase1Solved:
		return "phase1_solved"
	case StatePhase2Solving:
		return "phase2_solving"
	case StatePhase2Failed:
		return "phase2_failed"
	case StatePhase2Solved:
		return "phase2_solved"
	default:
		return "idle"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StatePhase1Failed || s == StatePhase2Failed || s == StatePhase2Solved
}

var transitions = map[State][]State{
	StateIdle:          {StatePhase1Solving},
	StatePhase1Solving: {StatePhase1Failed, StatePhase1Solved},
	StatePhase1Solved:  {StatePhase2Solving},
	StatePhase2Solving: {StatePhase2Failed, StatePhase2Solved},
}

// CanTransition reports whether next may follow s.
func (s State) CanTransition(next State) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}
