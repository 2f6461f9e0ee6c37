package scheduling

import (
	"github.com/kilianp07/crewsched/core/cp"
	"github.com/kilianp07/crewsched/core/model"
)

// WorkingDrivers counts the drivers on duty in a solved response.
func (f *Formulation) WorkingDrivers(resp *cp.Response) int {
	if f.isWorking == nil {
		return f.Drivers
	}
	n := 0
	for _, w := range f.isWorking {
		if resp.BoolValue(w) {
			n++
		}
	}
	return n
}

// Schedule decodes a solved response into rosters. Drivers off duty are
// skipped and the remaining ones renumbered in slot order.
func (f *Formulation) Schedule(resp *cp.Response) model.Schedule {
	sched := model.Schedule{Catalog: f.catalog.Name}
	ts := f.graph.Transitions()
	for d := 0; d < f.Drivers; d++ {
		if f.isWorking != nil && !resp.BoolValue(f.isWorking[d]) {
			continue
		}
		cur := -1
		for s, a := range f.sourceArcs[d] {
			if resp.BoolValue(a) {
				cur = s
				break
			}
		}
		if cur < 0 {
			continue
		}
		r := model.Roster{
			Driver:      len(sched.Rosters),
			StartTime:   int(resp.Value(f.start[d])),
			EndTime:     int(resp.Value(f.end[d])),
			DrivingTime: int(resp.Value(f.driving[d])),
			WorkingTime: int(resp.Value(f.working[d])),
		}
		gap := 0
		for cur >= 0 {
			r.Assignments = append(r.Assignments, model.Assignment{
				Shift:             f.catalog.Shifts[cur],
				CumulativeDriving: int(resp.Value(f.cumulative[d][cur])),
				SinceBreakDriving: int(resp.Value(f.sinceBreak[d][cur])),
				AfterBreak:        len(r.Assignments) > 0 && gap >= f.reg.MinBreak,
				Delay:             gap,
			})
			sched.TotalDelay += gap
			next := -1
			for _, k := range f.next[cur] {
				if resp.BoolValue(f.arcs[d][k]) {
					next, gap = ts[k].To, ts[k].Gap
					break
				}
			}
			cur = next
		}
		sched.Rosters = append(sched.Rosters, r)
	}
	sched.Drivers = len(sched.Rosters)
	return sched
}
