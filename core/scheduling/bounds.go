package scheduling

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/crewsched/core/model"
)

// lpSolve solves min c·x s.t. A x = b, x >= 0. It can be overridden in
// tests to simulate solver failures.
var lpSolve = func(c []float64, a *mat.Dense, b []float64) (float64, error) {
	opt, _, err := lp.Simplex(c, a, b, 1e-9, nil)
	return opt, err
}

// flowLP is the relaxation of the driver paths as a unit flow: every shift
// is entered once (from the source or another shift) and left once (to the
// sink or another shift). Its matrix is totally unimodular so the LP optimum
// equals the integer optimum of the relaxed problem.
type flowLP struct {
	n, arcs int
	// columns: source arcs [0,n), sink arcs [n,2n), transitions [2n,2n+arcs)
	a *mat.Dense
	b []float64
}

func newFlowLP(g *TransitionGraph, drivers int) flowLP {
	n := g.Len()
	ts := g.Transitions()
	rows := 2 * n
	if drivers > 0 {
		rows++
	}
	cols := 2*n + len(ts)
	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	for s := 0; s < n; s++ {
		// row s: incoming, row n+s: outgoing
		a.Set(s, s, 1)
		a.Set(n+s, n+s, 1)
		b[s], b[n+s] = 1, 1
	}
	for k, t := range ts {
		a.Set(t.To, 2*n+k, 1)
		a.Set(n+t.From, 2*n+k, 1)
	}
	if drivers > 0 {
		for s := 0; s < n; s++ {
			a.Set(2*n, s, 1)
		}
		b[2*n] = float64(drivers)
	}
	return flowLP{n: n, arcs: len(ts), a: a, b: b}
}

func (f flowLP) solve(c []float64) (int, error) {
	opt, err := lpSolve(c, f.a, f.b)
	if err != nil {
		return 0, err
	}
	return int(math.Round(opt)), nil
}

// PathCoverBound returns the minimum number of chronological shift chains
// covering the catalog, ignoring driving and working limits. It is a lower
// bound on the number of drivers.
func PathCoverBound(cat model.Catalog, reg model.Regulations) (int, error) {
	if len(cat.Shifts) == 0 {
		return 0, model.ErrEmptyCatalog
	}
	g := NewTransitionGraph(cat, reg)
	if len(g.Transitions()) == 0 {
		return g.Len(), nil
	}
	f := newFlowLP(g, 0)
	c := make([]float64, 2*f.n+f.arcs)
	for s := 0; s < f.n; s++ {
		c[s] = 1
	}
	v, err := f.solve(c)
	if err != nil {
		return 0, fmt.Errorf("path cover lp: %w", err)
	}
	return v, nil
}

// ErrTooFewDrivers is returned by DelayLowerBound when the shifts cannot be
// split into the requested number of chains.
var ErrTooFewDrivers = errors.New("not enough drivers to chain the shifts")

// DelayLowerBound returns the least total idle time of any split of the
// catalog into exactly drivers chains, ignoring driving and working limits.
func DelayLowerBound(cat model.Catalog, reg model.Regulations, drivers int) (int, error) {
	if len(cat.Shifts) == 0 {
		return 0, model.ErrEmptyCatalog
	}
	if drivers <= 0 || drivers > len(cat.Shifts) {
		return 0, fmt.Errorf("%w: %d drivers for %d shifts", ErrTooFewDrivers, drivers, len(cat.Shifts))
	}
	g := NewTransitionGraph(cat, reg)
	if drivers == g.Len() {
		return 0, nil
	}
	if len(g.Transitions()) == 0 {
		return 0, fmt.Errorf("%w: %d drivers", ErrTooFewDrivers, drivers)
	}
	f := newFlowLP(g, drivers)
	c := make([]float64, 2*f.n+f.arcs)
	for k, t := range g.Transitions() {
		c[2*f.n+k] = float64(t.Gap)
	}
	v, err := f.solve(c)
	if errors.Is(err, lp.ErrInfeasible) {
		return 0, fmt.Errorf("%w: %d drivers", ErrTooFewDrivers, drivers)
	}
	if err != nil {
		return 0, fmt.Errorf("delay lp: %w", err)
	}
	return v, nil
}

// DriverBounds gathers the lower bounds on the number of drivers.
type DriverBounds struct {
	// Driving is ceil(total driving / max driving time).
	Driving int
	// PathCover is the minimum number of shift chains, zero when unknown.
	PathCover int
}

// Lower returns the tightest known lower bound.
func (b DriverBounds) Lower() int { return max(b.Driving, b.PathCover, 1) }

// Pool returns the phase one pool size: multiplier times the driving bound,
// never below the path cover bound.
func (b DriverBounds) Pool(multiplier int) int {
	if multiplier < 1 {
		multiplier = 1
	}
	return max(multiplier*b.Driving, b.Lower())
}

// ComputeDriverBounds evaluates both driver bounds. The path cover bound is
// left at zero when its LP fails, alongside the returned error.
func ComputeDriverBounds(cat model.Catalog, reg model.Regulations) (DriverBounds, error) {
	b := DriverBounds{Driving: reg.DriversLowerBound(cat.TotalDriving())}
	pc, err := PathCoverBound(cat, reg)
	if err != nil {
		return b, err
	}
	b.PathCover = pc
	return b, nil
}
