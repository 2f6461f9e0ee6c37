package scheduling

import "github.com/kilianp07/crewsched/core/cp"

func constant(v int) *cp.LinearExpr { return cp.NewConstant(int64(v)) }

// addDriver builds the day of driver d as a path source -> shifts -> sink.
// Each shift node has a self-loop, the negation of its active literal, so
// that inactive nodes satisfy the exactly-one closure on their own.
func (f *Formulation) addDriver(d int) {
	m, reg, shifts := f.Model, f.reg, f.catalog.Shifts
	n := len(shifts)

	start := m.NewIntVar(f.minStart-int64(reg.SetupTime), f.maxEnd, name("start_d%d", d))
	end := m.NewIntVar(f.minStart, f.maxEnd+int64(reg.CleanupTime), name("end_d%d", d))
	driving := m.NewIntVar(0, int64(reg.MaxDrivingTime), name("driving_d%d", d))
	working := m.NewIntVar(0, int64(reg.MaxWorkingTime), name("working_time_d%d", d))
	m.AddEquality(working, cp.NewLinearExpr().Add(end).AddTerm(start, -1))
	f.start[d], f.end[d], f.driving[d], f.working[d] = start, end, driving, working

	active := make([]cp.BoolVar, n)
	cumulative := make([]cp.IntVar, n)
	sinceBreak := make([]cp.IntVar, n)
	sourceArcs := make([]cp.BoolVar, n)
	sinkArcs := make([]cp.BoolVar, n)
	incoming := make([][]cp.BoolVar, n)
	outgoing := make([][]cp.BoolVar, n)
	var sourceOut, sinkIn []cp.BoolVar

	for s, sh := range shifts {
		act := m.NewBoolVar(name("active_d%d_s%d", d, s))
		cum := m.NewIntVar(0, int64(reg.MaxDrivingTime), name("cumulative_d%d_s%d", d, s))
		since := m.NewIntVar(0, int64(reg.MaxDrivingWithoutBreak), name("since_break_d%d_s%d", d, s))
		active[s], cumulative[s], sinceBreak[s] = act, cum, since

		m.AddEquality(cum, constant(0)).OnlyEnforceIf(act.Not())
		m.AddEquality(since, constant(0)).OnlyEnforceIf(act.Not())
		m.AddLessOrEqual(start, constant(sh.StartMinute-reg.SetupTime)).OnlyEnforceIf(act)
		m.AddGreaterOrEqual(end, constant(sh.EndMinute+reg.CleanupTime)).OnlyEnforceIf(act)

		// self-loop
		incoming[s] = append(incoming[s], act.Not())
		outgoing[s] = append(outgoing[s], act.Not())

		src := m.NewBoolVar(name("arc_d%d_source_s%d", d, s))
		m.AddEquality(start, constant(sh.StartMinute-reg.SetupTime)).OnlyEnforceIf(src)
		m.AddEquality(cum, constant(sh.DrivingMinutes)).OnlyEnforceIf(src)
		m.AddEquality(since, constant(sh.DrivingMinutes)).OnlyEnforceIf(src)
		sourceArcs[s] = src
		sourceOut = append(sourceOut, src)
		incoming[s] = append(incoming[s], src)
		f.enteringArcs[s] = append(f.enteringArcs[s], src)

		snk := m.NewBoolVar(name("arc_d%d_s%d_sink", d, s))
		m.AddEquality(end, constant(sh.EndMinute+reg.CleanupTime)).OnlyEnforceIf(snk)
		m.AddEquality(driving, cum).OnlyEnforceIf(snk)
		sinkArcs[s] = snk
		sinkIn = append(sinkIn, snk)
		outgoing[s] = append(outgoing[s], snk)
		f.leavingArcs[s] = append(f.leavingArcs[s], snk)
	}

	ts := f.graph.Transitions()
	arcs := make([]cp.BoolVar, len(ts))
	for k, t := range ts {
		o := shifts[t.To]
		lit := m.NewBoolVar(name("arc_d%d_s%d_s%d", d, t.From, t.To))
		arcs[k] = lit
		m.AddEquality(cumulative[t.To], cp.NewLinearExpr().Add(cumulative[t.From]).AddConstant(int64(o.DrivingMinutes))).
			OnlyEnforceIf(lit)
		if t.Gap >= reg.MinBreak {
			m.AddEquality(sinceBreak[t.To], constant(o.DrivingMinutes)).OnlyEnforceIf(lit)
		} else {
			// The since-break domain caps the carried driving.
			m.AddEquality(sinceBreak[t.To], cp.NewLinearExpr().Add(sinceBreak[t.From]).AddConstant(int64(o.DrivingMinutes))).
				OnlyEnforceIf(lit)
		}
		outgoing[t.From] = append(outgoing[t.From], lit)
		incoming[t.To] = append(incoming[t.To], lit)
		f.leavingArcs[t.From] = append(f.leavingArcs[t.From], lit)
		f.enteringArcs[t.To] = append(f.enteringArcs[t.To], lit)
		f.delay.AddTerm(lit, int64(t.Gap))
	}

	if f.Mode == ModeMinimizeDrivers {
		w := m.NewBoolVar(name("working_d%d", d))
		f.isWorking[d] = w
		m.AddEquality(start, cp.NewConstant(f.minStart)).OnlyEnforceIf(w.Not())
		m.AddEquality(end, cp.NewConstant(f.minStart)).OnlyEnforceIf(w.Not())
		m.AddEquality(driving, constant(0)).OnlyEnforceIf(w.Not())
		m.AddEquality(working, constant(0)).OnlyEnforceIf(w.Not())
		m.AddGreaterOrEqual(working, constant(reg.MinWorkingTime)).OnlyEnforceIf(w)
		// A driver off duty goes straight from source to sink.
		sourceOut = append(sourceOut, w.Not())
		sinkIn = append(sinkIn, w.Not())
	} else {
		m.AddGreaterOrEqual(working, constant(reg.MinWorkingTime))
	}

	for s := 0; s < n; s++ {
		m.AddExactlyOne(incoming[s]...)
		m.AddExactlyOne(outgoing[s]...)
	}
	m.AddExactlyOne(sourceOut...)
	m.AddExactlyOne(sinkIn...)

	f.active[d], f.cumulative[d], f.sinceBreak[d] = active, cumulative, sinceBreak
	f.sourceArcs[d], f.sinkArcs[d], f.arcs[d] = sourceArcs, sinkArcs, arcs
}
