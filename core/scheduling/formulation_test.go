package scheduling

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crewsched/core/cp"
	"github.com/kilianp07/crewsched/core/model"
)

func solveFormulation(t *testing.T, f *Formulation) *cp.Response {
	t.Helper()
	resp, err := cp.Solve(context.Background(), f.Model, cp.DefaultParameters())
	require.NoError(t, err)
	return resp
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	reg := model.DefaultRegulations()

	_, err := Build(model.Catalog{}, reg, BuildOptions{Drivers: 1})
	assert.ErrorIs(t, err, model.ErrEmptyCatalog)

	_, err = Build(threeLong(), reg, BuildOptions{Drivers: 0})
	assert.Error(t, err)

	bad := reg
	bad.MaxDrivingWithoutBreak = bad.MaxDrivingTime + 1
	_, err = Build(threeLong(), bad, BuildOptions{Drivers: 1})
	assert.ErrorContains(t, err, "regulations")

	dup := catalogOf("dup", shift("a", 0, 60), shift("a", 100, 160))
	_, err = Build(dup, reg, BuildOptions{Drivers: 1})
	assert.ErrorIs(t, err, model.ErrInvalidShift)
}

func TestBuildStats(t *testing.T) {
	// Per driver: 4 totals, 3 variables and 2 end arcs per shift, and one
	// literal per transition (a->b, a->c, b->c).
	f, err := Build(threeLong(), relaxed(), BuildOptions{Mode: ModeMinimizeWorkingTime, Drivers: 2})
	require.NoError(t, err)
	st := f.Model.Stats()
	assert.Equal(t, 44, st.Variables)
	assert.Equal(t, 24, st.Booleans)
	assert.Positive(t, st.Enforced)

	f, err = Build(threeLong(), relaxed(), BuildOptions{Mode: ModeMinimizeDrivers, Drivers: 2})
	require.NoError(t, err)
	st = f.Model.Stats()
	assert.Equal(t, 46, st.Variables)
	assert.Equal(t, 26, st.Booleans)
	assert.True(t, f.Model.HasObjective())
}

func TestBuildVariableNames(t *testing.T) {
	f, err := Build(threeLong(), relaxed(), BuildOptions{Mode: ModeMinimizeDrivers, Drivers: 2})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Model.WriteYAML(&buf))
	out := buf.String()
	for _, name := range []string{
		"start_d0", "end_d1", "working_time_d0", "working_d1",
		"active_d1_s2", "cumulative_d0_s1", "since_break_d0_s2",
		"arc_d0_source_s0", "arc_d1_s2_sink", "arc_d0_s0_s1",
	} {
		assert.Contains(t, out, name)
	}
	assert.Equal(t, threeLong().Name, f.Catalog().Name)
	assert.Equal(t, 3, f.Graph().Len())
}

func TestFixedDriversMinimizesIdleTime(t *testing.T) {
	f, err := Build(threeLong(), relaxed(), BuildOptions{Mode: ModeMinimizeWorkingTime, Drivers: 2})
	require.NoError(t, err)
	resp := solveFormulation(t, f)
	require.Equal(t, cp.Optimal, resp.Status)
	assert.EqualValues(t, 35, resp.ObjectiveValue)
	assert.EqualValues(t, 35, resp.Eval(f.Objective()))
	assert.Equal(t, 2, f.WorkingDrivers(resp))

	s := f.Schedule(resp)
	require.Equal(t, 2, s.Drivers)
	assert.Equal(t, 35, s.TotalDelay)
	assert.Equal(t, 720, s.TotalDriving())
	// spans, overhead of both drivers and the idle gap
	assert.Equal(t, 720+2*25+35, s.TotalWorking())
	// the only opener is pinned to the first driver
	assert.Equal(t, "a", s.Rosters[0].Assignments[0].Shift.Label)
}

func TestFixedDriversInfeasible(t *testing.T) {
	// 720 min of driving cannot fit in one 540 min day.
	f, err := Build(threeLong(), relaxed(), BuildOptions{Mode: ModeMinimizeWorkingTime, Drivers: 1})
	require.NoError(t, err)
	resp := solveFormulation(t, f)
	assert.Equal(t, cp.Infeasible, resp.Status)
}

func TestMinimizeDriversOffDutySuffix(t *testing.T) {
	f, err := Build(threeLong(), relaxed(), BuildOptions{Mode: ModeMinimizeDrivers, Drivers: 4})
	require.NoError(t, err)
	resp := solveFormulation(t, f)
	require.Equal(t, cp.Optimal, resp.Status)
	assert.EqualValues(t, 2, resp.ObjectiveValue)
	assert.Equal(t, 2, f.WorkingDrivers(resp))

	for d, want := range []bool{true, true, false, false} {
		assert.Equal(t, want, resp.BoolValue(f.isWorking[d]), "driver %d", d)
	}
	s := f.Schedule(resp)
	assert.Equal(t, 2, s.Drivers)
	for _, sh := range threeLong().Shifts {
		assert.GreaterOrEqual(t, s.DriverOf(sh.Label), 0, "shift %s unserved", sh.Label)
	}
}

func TestOpenersPinnedRatherThanCatalogHead(t *testing.T) {
	// b follows a, so only a and c must open a day although b is among the
	// first three shifts.
	cat := catalogOf("chained", shift("a", 0, 60), shift("c", 20, 80), shift("b", 70, 130))
	f, err := Build(cat, relaxed(), BuildOptions{Mode: ModeMinimizeDrivers, Drivers: 3})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, f.Graph().Openers())

	resp := solveFormulation(t, f)
	require.Equal(t, cp.Optimal, resp.Status)
	assert.EqualValues(t, 2, resp.ObjectiveValue)
	assert.True(t, resp.BoolValue(f.sourceArcs[0][0]))
	assert.True(t, resp.BoolValue(f.sourceArcs[1][1]))

	s := f.Schedule(resp)
	require.Len(t, s.Rosters, 2)
	assert.Equal(t, "a", s.Rosters[0].Assignments[0].Shift.Label)
	require.Len(t, s.Rosters[0].Assignments, 2)
	assert.Equal(t, "b", s.Rosters[0].Assignments[1].Shift.Label)
	assert.Equal(t, "c", s.Rosters[1].Assignments[0].Shift.Label)
}

func TestObjectiveLowerBoundEndsSearch(t *testing.T) {
	f, err := Build(crossed(), model.DefaultRegulations(), BuildOptions{
		Mode:                ModeMinimizeWorkingTime,
		Drivers:             2,
		ObjectiveLowerBound: 60,
	})
	require.NoError(t, err)
	resp := solveFormulation(t, f)
	require.Equal(t, cp.Optimal, resp.Status)
	assert.EqualValues(t, 60, resp.ObjectiveValue)
	assert.EqualValues(t, 60, resp.BestObjectiveBound)
	lb, ok := f.Model.ObjectiveLowerBound()
	assert.True(t, ok)
	assert.EqualValues(t, 60, lb)
}

func TestBreakAccumulators(t *testing.T) {
	tests := []struct {
		name       string
		cat        model.Catalog
		reg        model.Regulations
		sinceBreak int
		cumulative int
		afterBreak bool
	}{
		{
			name:       "qualifying break resets",
			cat:        catalogOf("reset", shift("a", 0, 60), shift("b", 560, 620)),
			reg:        model.DefaultRegulations(),
			sinceBreak: 60,
			cumulative: 120,
			afterBreak: true,
		},
		{
			name:       "short gap carries forward",
			cat:        catalogOf("carry", shift("a", 0, 100), shift("b", 120, 220)),
			reg:        relaxed(),
			sinceBreak: 200,
			cumulative: 200,
			afterBreak: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Build(tt.cat, tt.reg, BuildOptions{Mode: ModeMinimizeWorkingTime, Drivers: 1})
			require.NoError(t, err)
			resp := solveFormulation(t, f)
			require.Equal(t, cp.Optimal, resp.Status)

			s := f.Schedule(resp)
			require.Len(t, s.Rosters, 1)
			as := s.Rosters[0].Assignments
			require.Len(t, as, 2)
			assert.False(t, as[0].AfterBreak)
			assert.Zero(t, as[0].Delay)
			assert.Equal(t, tt.afterBreak, as[1].AfterBreak)
			assert.Equal(t, tt.sinceBreak, as[1].SinceBreakDriving)
			assert.Equal(t, tt.cumulative, as[1].CumulativeDriving)
		})
	}
}
