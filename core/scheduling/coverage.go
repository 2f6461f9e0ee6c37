package scheduling

import "github.com/kilianp07/crewsched/core/cp"

// addCoverage makes every shift served by exactly one driver. The entering
// and leaving constraints restate the per-driver closure across drivers.
func (f *Formulation) addCoverage() {
	m := f.Model
	for s := range f.catalog.Shifts {
		served := make([]cp.BoolVar, f.Drivers)
		for d := 0; d < f.Drivers; d++ {
			served[d] = f.active[d][s]
		}
		m.AddExactlyOne(served...)
		m.AddExactlyOne(f.enteringArcs[s]...)
		m.AddExactlyOne(f.leavingArcs[s]...)
	}
}

// addRedundant adds implied equalities on the driver totals. They do not
// change the feasible set.
func (f *Formulation) addRedundant() {
	m := f.Model
	drivingSum := cp.NewLinearExpr()
	workingSum := cp.NewLinearExpr()
	for d := 0; d < f.Drivers; d++ {
		drivingSum.Add(f.driving[d])
		workingSum.Add(f.working[d])
	}
	m.AddEquality(drivingSum, constant(f.catalog.TotalDriving()))

	if f.Mode != ModeMinimizeWorkingTime {
		return
	}
	// Every mandatory driver works from setup to cleanup around its shift
	// spans and the gaps between them.
	fixed := f.catalog.TotalSpan() + f.Drivers*f.reg.Overhead()
	m.AddEquality(workingSum, cp.NewLinearExpr().Add(f.delay).AddConstant(int64(fixed)))
}
