package scheduling_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crewsched/core/cp"
	"github.com/kilianp07/crewsched/core/model"
	"github.com/kilianp07/crewsched/core/scheduling"
	"github.com/kilianp07/crewsched/infra/catalog"
)

func loadCatalog(t *testing.T, name string) model.Catalog {
	t.Helper()
	cat, err := catalog.EmbeddedSource{Name: name}.Load(context.Background())
	require.NoError(t, err)
	return cat
}

func TestRunSmallCatalogDefaultRegulations(t *testing.T) {
	cat := loadCatalog(t, "small")
	reg := model.DefaultRegulations()
	params := cp.DefaultParameters()
	params.NumWorkers = 4
	params.MaxTime = time.Minute

	o := scheduling.NewOrchestrator(scheduling.Config{Regulations: reg, Params: params})
	res, err := o.Run(context.Background(), cat)
	require.NoError(t, err)
	assert.Equal(t, cp.Optimal, res.Phase1.Status)
	require.NotNil(t, res.Phase2)
	require.True(t, res.Phase2.Status.Solved())

	s := res.Schedule
	require.Len(t, s.Rosters, res.Drivers)
	assert.Equal(t, cat.TotalDriving(), s.TotalDriving())

	served := map[string]int{}
	for _, r := range s.Rosters {
		require.NotEmpty(t, r.Assignments, "driver %d", r.Driver)
		assert.LessOrEqual(t, r.DrivingTime, reg.MaxDrivingTime, "driver %d", r.Driver)
		assert.GreaterOrEqual(t, r.WorkingTime, reg.MinWorkingTime, "driver %d", r.Driver)
		assert.LessOrEqual(t, r.WorkingTime, reg.MaxWorkingTime, "driver %d", r.Driver)
		for i, a := range r.Assignments {
			served[a.Shift.Label]++
			assert.LessOrEqual(t, a.SinceBreakDriving, reg.MaxDrivingWithoutBreak, "driver %d shift %s", r.Driver, a.Shift.Label)
			if i > 0 && a.Delay < reg.MinBreak {
				prev := r.Assignments[i-1]
				assert.Equal(t, prev.SinceBreakDriving+a.Shift.DrivingMinutes, a.SinceBreakDriving,
					"driver %d shift %s", r.Driver, a.Shift.Label)
			}
		}
	}
	for _, sh := range cat.Shifts {
		assert.Equal(t, 1, served[sh.Label], "shift %s", sh.Label)
	}
}

func TestMinimizeDriversMediumReachesLowerBound(t *testing.T) {
	if testing.Short() {
		t.Skip("solves the medium catalog")
	}
	cat := loadCatalog(t, "medium")
	reg := model.DefaultRegulations()
	b, err := scheduling.ComputeDriverBounds(cat, reg)
	require.NoError(t, err)
	require.Equal(t, 6, b.Lower())

	f, err := scheduling.Build(cat, reg, scheduling.BuildOptions{
		Mode:                scheduling.ModeMinimizeDrivers,
		Drivers:             b.Pool(scheduling.DefaultPoolMultiplier),
		ObjectiveLowerBound: b.Lower(),
	})
	require.NoError(t, err)

	params := cp.DefaultParameters()
	params.MaxTime = time.Minute
	resp, err := cp.Solve(context.Background(), f.Model, params)
	require.NoError(t, err)
	assert.Equal(t, cp.Optimal, resp.Status)
	assert.EqualValues(t, 6, resp.ObjectiveValue)
	assert.EqualValues(t, 6, resp.BestObjectiveBound)
	assert.Less(t, resp.WallTime, params.MaxTime)
}
