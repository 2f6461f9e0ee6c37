package model

// Assignment is one shift served by a driver, with the accumulators observed
// at that shift.
type Assignment struct {
	Shift Shift `json:"shift"`
	// CumulativeDriving is the driving accumulated up to and including this shift.
	CumulativeDriving int `json:"cumulative_driving"`
	// SinceBreakDriving is the driving accumulated since the last qualifying break.
	SinceBreakDriving int `json:"since_break_driving"`
	// AfterBreak is set when a qualifying break precedes the shift.
	AfterBreak bool `json:"after_break"`
	// Delay is the idle gap before the shift, zero for the opening shift.
	Delay int `json:"delay"`
}

// Roster is the working day of one driver.
type Roster struct {
	Driver      int          `json:"driver"`
	StartTime   int          `json:"start_time"`
	EndTime     int          `json:"end_time"`
	DrivingTime int          `json:"driving_time"`
	WorkingTime int          `json:"working_time"`
	Assignments []Assignment `json:"assignments"`
}

// Breaks counts the assignments preceded by a qualifying break.
func (r Roster) Breaks() int {
	n := 0
	for _, a := range r.Assignments {
		if a.AfterBreak {
			n++
		}
	}
	return n
}

// Schedule is a solved assignment of a catalog to drivers.
type Schedule struct {
	Catalog    string   `json:"catalog"`
	Drivers    int      `json:"drivers"`
	TotalDelay int      `json:"total_delay"`
	Rosters    []Roster `json:"rosters"`
}

// TotalDriving sums driving time over all rosters.
func (s Schedule) TotalDriving() int {
	t := 0
	for _, r := range s.Rosters {
		t += r.DrivingTime
	}
	return t
}

// TotalWorking sums working time over all rosters.
func (s Schedule) TotalWorking() int {
	t := 0
	for _, r := range s.Rosters {
		t += r.WorkingTime
	}
	return t
}

// DriverOf returns the driver serving the shift label, or -1.
func (s Schedule) DriverOf(label string) int {
	for _, r := range s.Rosters {
		for _, a := range r.Assignments {
			if a.Shift.Label == label {
				return r.Driver
			}
		}
	}
	return -1
}
