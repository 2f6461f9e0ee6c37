package model

import (
	"errors"
	"fmt"
)

// ErrEmptyCatalog is returned when a catalog has no shifts.
var ErrEmptyCatalog = errors.New("empty shift catalog")

// Catalog is an ordered, immutable sequence of shifts.
type Catalog struct {
	Name   string  `json:"name" yaml:"name"`
	Shifts []Shift `json:"shifts" yaml:"shifts"`
}

// Len returns the number of shifts.
func (c Catalog) Len() int { return len(c.Shifts) }

// TotalDriving returns the sum of driving minutes over all shifts.
func (c Catalog) TotalDriving() int {
	total := 0
	for _, s := range c.Shifts {
		total += s.DrivingMinutes
	}
	return total
}

// TotalSpan returns the sum of shift spans.
func (c Catalog) TotalSpan() int {
	total := 0
	for _, s := range c.Shifts {
		total += s.Span()
	}
	return total
}

// MinStart returns the earliest shift start, or 0 for an empty catalog.
func (c Catalog) MinStart() int {
	if len(c.Shifts) == 0 {
		return 0
	}
	m := c.Shifts[0].StartMinute
	for _, s := range c.Shifts[1:] {
		if s.StartMinute < m {
			m = s.StartMinute
		}
	}
	return m
}

// MaxEnd returns the latest shift end, or 0 for an empty catalog.
func (c Catalog) MaxEnd() int {
	if len(c.Shifts) == 0 {
		return 0
	}
	m := c.Shifts[0].EndMinute
	for _, s := range c.Shifts[1:] {
		if s.EndMinute > m {
			m = s.EndMinute
		}
	}
	return m
}

// Validate checks that the catalog is non-empty and every shift is well
// formed. Labels must be unique.
func (c Catalog) Validate() error {
	if len(c.Shifts) == 0 {
		return ErrEmptyCatalog
	}
	seen := make(map[string]struct{}, len(c.Shifts))
	for i, s := range c.Shifts {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("shift %d: %w", i, err)
		}
		if _, ok := seen[s.Label]; ok {
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidShift, s.Label)
		}
		seen[s.Label] = struct{}{}
	}
	return nil
}

// Normalize returns a copy where missing labels and display strings are
// derived from the shift index and minute offsets.
func (c Catalog) Normalize() Catalog {
	out := Catalog{Name: c.Name, Shifts: make([]Shift, len(c.Shifts))}
	for i, s := range c.Shifts {
		if s.Label == "" {
			s.Label = fmt.Sprintf("%d", i)
		}
		out.Shifts[i] = s.WithDisplay()
	}
	return out
}
