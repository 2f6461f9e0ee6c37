package model

import "fmt"

// Regulations holds the labor thresholds, all in minutes.
type Regulations struct {
	MaxDrivingTime         int `json:"max_driving_time" yaml:"max_driving_time"`
	MaxDrivingWithoutBreak int `json:"max_driving_without_break" yaml:"max_driving_without_break"`
	MinBreak               int `json:"min_break" yaml:"min_break"`
	MinDelayBetweenShifts  int `json:"min_delay_between_shifts" yaml:"min_delay_between_shifts"`
	MaxWorkingTime         int `json:"max_working_time" yaml:"max_working_time"`
	MinWorkingTime         int `json:"min_working_time" yaml:"min_working_time"`
	SetupTime              int `json:"setup_time" yaml:"setup_time"`
	CleanupTime            int `json:"cleanup_time" yaml:"cleanup_time"`
}

// DefaultRegulations returns the reference thresholds: 9h driving, 4h
// without a 30 minute break, a working day between 6h30 and 12h.
func DefaultRegulations() Regulations {
	return Regulations{
		MaxDrivingTime:         540,
		MaxDrivingWithoutBreak: 240,
		MinBreak:               30,
		MinDelayBetweenShifts:  2,
		MaxWorkingTime:         720,
		MinWorkingTime:         390,
		SetupTime:              10,
		CleanupTime:            15,
	}
}

// SetDefaults fills zero thresholds with the reference values. MinWorkingTime
// and MinDelayBetweenShifts are left untouched since zero is meaningful.
func (r *Regulations) SetDefaults() {
	d := DefaultRegulations()
	if r.MaxDrivingTime == 0 {
		r.MaxDrivingTime = d.MaxDrivingTime
	}
	if r.MaxDrivingWithoutBreak == 0 {
		r.MaxDrivingWithoutBreak = d.MaxDrivingWithoutBreak
	}
	if r.MinBreak == 0 {
		r.MinBreak = d.MinBreak
	}
	if r.MaxWorkingTime == 0 {
		r.MaxWorkingTime = d.MaxWorkingTime
	}
}

// Validate checks that the thresholds are consistent.
func (r Regulations) Validate() error {
	switch {
	case r.MaxDrivingTime <= 0:
		return fmt.Errorf("max_driving_time must be positive")
	case r.MaxDrivingWithoutBreak <= 0:
		return fmt.Errorf("max_driving_without_break must be positive")
	case r.MaxDrivingWithoutBreak > r.MaxDrivingTime:
		return fmt.Errorf("max_driving_without_break %d exceeds max_driving_time %d", r.MaxDrivingWithoutBreak, r.MaxDrivingTime)
	case r.MinBreak < 0 || r.MinDelayBetweenShifts < 0:
		return fmt.Errorf("break and delay thresholds must not be negative")
	case r.MaxWorkingTime <= 0:
		return fmt.Errorf("max_working_time must be positive")
	case r.MinWorkingTime < 0 || r.MinWorkingTime > r.MaxWorkingTime:
		return fmt.Errorf("min_working_time %d outside [0,%d]", r.MinWorkingTime, r.MaxWorkingTime)
	case r.SetupTime < 0 || r.CleanupTime < 0:
		return fmt.Errorf("setup and cleanup times must not be negative")
	}
	return nil
}

// Overhead returns the fixed setup plus cleanup minutes of a working day.
func (r Regulations) Overhead() int { return r.SetupTime + r.CleanupTime }

// DriversLowerBound returns ceil(totalDriving / MaxDrivingTime).
func (r Regulations) DriversLowerBound(totalDriving int) int {
	if r.MaxDrivingTime <= 0 || totalDriving <= 0 {
		return 0
	}
	return (totalDriving + r.MaxDrivingTime - 1) / r.MaxDrivingTime
}
