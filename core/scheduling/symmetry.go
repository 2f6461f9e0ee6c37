package scheduling

// maxPinnedOpeners bounds how many drivers get a fixed opening shift.
const maxPinnedOpeners = 3

// breakSymmetries removes equivalent solutions under driver permutation.
//
// Shifts without any viable predecessor always open some driver's day, and
// two of them never share a driver. The first ones in catalog order are
// pinned as the opening shifts of drivers 0, 1 and 2. In driver
// minimization mode, drivers off duty form a suffix of the pool.
func (f *Formulation) breakSymmetries() {
	m := f.Model
	openers := f.graph.Openers()
	for d, s := range openers {
		if d >= maxPinnedOpeners || d >= f.Drivers {
			break
		}
		m.AddBoolOr(f.sourceArcs[d][s])
	}
	if f.Mode != ModeMinimizeDrivers {
		return
	}
	for d := 0; d+1 < f.Drivers; d++ {
		m.AddImplication(f.isWorking[d].Not(), f.isWorking[d+1].Not())
	}
}
