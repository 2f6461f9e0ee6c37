package cp

import "time"

// Status is the outcome of a solve.
type Status int

const (
	Unknown Status = iota
	ModelInvalid
	Feasible
	Infeasible
	Optimal
)

func (s Status) String() string {
	switch s {
	case ModelInvalid:
		return "MODEL_INVALID"
	case Feasible:
		return "FEASIBLE"
	case Infeasible:
		return "INFEASIBLE"
	case Optimal:
		return "OPTIMAL"
	default:
		return "UNKNOWN"
	}
}

// Solved reports whether a solution is available.
func (s Status) Solved() bool { return s == Optimal || s == Feasible }

// Response is the result of Solve.
type Response struct {
	Status Status
	// ObjectiveValue is the objective of the returned solution.
	ObjectiveValue int64
	// BestObjectiveBound is a proven lower bound on the objective.
	BestObjectiveBound int64
	WallTime           time.Duration
	NumBranches        int64
	NumConflicts       int64
	NumSolutions       int
	// Worker is the index of the portfolio worker that found the solution.
	Worker int

	values []int64
}

// Value returns the value of v in the solution, or 0 without solution.
func (r *Response) Value(v IntVar) int64 {
	if r == nil || v.ind >= len(r.values) {
		return 0
	}
	return r.values[v.ind]
}

// BoolValue returns the value of the literal b in the solution.
func (r *Response) BoolValue(b BoolVar) bool {
	if r == nil || b.Index() >= len(r.values) {
		return false
	}
	val := r.values[b.Index()] == 1
	if b.Negated() {
		return !val
	}
	return val
}

// Eval evaluates a linear expression on the solution.
func (r *Response) Eval(la LinearArgument) int64 {
	e := NewLinearExpr()
	la.addToLinearExpr(e, 1)
	total := e.offset
	for _, t := range e.terms {
		if t.v < len(r.values) {
			total += t.c * r.values[t.v]
		}
	}
	return total
}
