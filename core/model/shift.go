package model

import (
	"errors"
	"fmt"
)

// ErrInvalidShift is returned when a shift record is malformed.
var ErrInvalidShift = errors.New("invalid shift")

// Shift is a single timed driving assignment. Times are minute offsets
// within one day.
type Shift struct {
	Label          string `json:"label" yaml:"label"`
	DisplayStart   string `json:"start" yaml:"start"`
	DisplayEnd     string `json:"end" yaml:"end"`
	StartMinute    int    `json:"start_minute" yaml:"start_minute"`
	EndMinute      int    `json:"end_minute" yaml:"end_minute"`
	DrivingMinutes int    `json:"driving_minutes" yaml:"driving_minutes"`
}

// Span returns the elapsed minutes between start and end.
func (s Shift) Span() int { return s.EndMinute - s.StartMinute }

// GapTo returns the idle minutes between the end of s and the start of next.
// The value is negative when the shifts overlap.
func (s Shift) GapTo(next Shift) int { return next.StartMinute - s.EndMinute }

// Validate checks the shift invariants.
func (s Shift) Validate() error {
	if s.StartMinute >= s.EndMinute {
		return fmt.Errorf("%w %q: start %d not before end %d", ErrInvalidShift, s.Label, s.StartMinute, s.EndMinute)
	}
	if s.DrivingMinutes <= 0 {
		return fmt.Errorf("%w %q: driving minutes must be positive", ErrInvalidShift, s.Label)
	}
	if s.DrivingMinutes > s.Span() {
		return fmt.Errorf("%w %q: driving %d exceeds span %d", ErrInvalidShift, s.Label, s.DrivingMinutes, s.Span())
	}
	return nil
}

// WithDisplay fills empty display strings from the minute offsets.
func (s Shift) WithDisplay() Shift {
	if s.DisplayStart == "" {
		s.DisplayStart = FormatMinute(s.StartMinute)
	}
	if s.DisplayEnd == "" {
		s.DisplayEnd = FormatMinute(s.EndMinute)
	}
	return s
}

// FormatMinute renders a minute offset as HH:MM. Negative offsets are
// rendered with a leading minus sign.
func FormatMinute(m int) string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%02d:%02d", sign, m/60, m%60)
}
