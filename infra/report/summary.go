package report

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/crewsched/core/model"
)

// Summary aggregates the rosters of a schedule.
type Summary struct {
	Drivers       int
	TotalDriving  int
	TotalWorking  int
	TotalDelay    int
	Breaks        int
	MeanWorking   float64
	StdDevWorking float64
	MinWorking    float64
	MaxWorking    float64
	// Utilization is the share of working time spent driving.
	Utilization float64
}

// Summarize computes working time statistics over the rosters of s.
func Summarize(s model.Schedule) Summary {
	sum := Summary{
		Drivers:      len(s.Rosters),
		TotalDriving: s.TotalDriving(),
		TotalWorking: s.TotalWorking(),
		TotalDelay:   s.TotalDelay,
	}
	if len(s.Rosters) == 0 {
		return sum
	}
	working := make([]float64, len(s.Rosters))
	for i, r := range s.Rosters {
		working[i] = float64(r.WorkingTime)
		sum.Breaks += r.Breaks()
	}
	sum.MinWorking = floats.Min(working)
	sum.MaxWorking = floats.Max(working)
	if len(working) > 1 {
		sum.MeanWorking, sum.StdDevWorking = stat.MeanStdDev(working, nil)
	} else {
		sum.MeanWorking = working[0]
	}
	if sum.TotalWorking > 0 {
		sum.Utilization = float64(sum.TotalDriving) / float64(sum.TotalWorking)
	}
	return sum
}
