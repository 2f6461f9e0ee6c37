package scheduling

import "github.com/kilianp07/crewsched/core/cp"

// setObjective installs the objective of the formulation mode. A positive
// lowerBound is declared as the objective lower bound.
func (f *Formulation) setObjective(lowerBound int) {
	m := f.Model
	var obj *cp.LinearExpr
	switch f.Mode {
	case ModeMinimizeDrivers:
		obj = cp.Sum(cp.BoolsAsArgs(f.isWorking)...)
	default:
		// Total driving is fixed, so idle time is the only part of the
		// working time left to minimize.
		obj = f.delay
	}
	m.Minimize(obj)
	if lowerBound > 0 {
		m.SetObjectiveLowerBound(int64(lowerBound))
	}
}

// addDecisionStrategy branches driver by driver: the working flag, the
// opening shift, then each shift's successor and closing arcs in catalog
// order.
func (f *Formulation) addDecisionStrategy() {
	var vars []cp.Var
	for d := 0; d < f.Drivers; d++ {
		if f.isWorking != nil {
			vars = append(vars, f.isWorking[d])
		}
		for _, a := range f.sourceArcs[d] {
			vars = append(vars, a)
		}
		for s := range f.catalog.Shifts {
			for _, k := range f.next[s] {
				vars = append(vars, f.arcs[d][k])
			}
			vars = append(vars, f.sinkArcs[d][s])
		}
	}
	f.Model.AddDecisionStrategy(vars...)
}

// Objective returns the objective expression of the formulation.
func (f *Formulation) Objective() cp.LinearArgument {
	if f.Mode == ModeMinimizeDrivers {
		return cp.Sum(cp.BoolsAsArgs(f.isWorking)...)
	}
	return f.delay
}
