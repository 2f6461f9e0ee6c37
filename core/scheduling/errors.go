package scheduling

import "errors"

var (
	// ErrNoSolution is returned when the driver minimization phase finds no
	// feasible assignment within the driver pool.
	ErrNoSolution = errors.New("no solution")
	// ErrInconsistentPhase2 is returned when the working time phase fails
	// although the driver count came from a solved first phase.
	ErrInconsistentPhase2 = errors.New("working time phase failed for a proven driver count")
)
