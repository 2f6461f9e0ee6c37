package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCatalog() Catalog {
	return Catalog{Name: "t", Shifts: []Shift{
		{Label: "a", StartMinute: 300, EndMinute: 400, DrivingMinutes: 100},
		{Label: "b", StartMinute: 280, EndMinute: 330, DrivingMinutes: 40},
		{Label: "c", StartMinute: 450, EndMinute: 700, DrivingMinutes: 250},
	}}
}

func TestCatalogAggregates(t *testing.T) {
	c := sampleCatalog()
	assert.Equal(t, 390, c.TotalDriving())
	assert.Equal(t, 400, c.TotalSpan())
	assert.Equal(t, 280, c.MinStart())
	assert.Equal(t, 700, c.MaxEnd())
	assert.Equal(t, 3, c.Len())
	require.NoError(t, c.Validate())
}

func TestCatalogValidate(t *testing.T) {
	assert.ErrorIs(t, Catalog{}.Validate(), ErrEmptyCatalog)

	bad := Catalog{Shifts: []Shift{{Label: "x", StartMinute: 10, EndMinute: 10, DrivingMinutes: 1}}}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidShift)

	over := Catalog{Shifts: []Shift{{Label: "x", StartMinute: 0, EndMinute: 10, DrivingMinutes: 11}}}
	assert.True(t, errors.Is(over.Validate(), ErrInvalidShift))

	dup := Catalog{Shifts: []Shift{
		{Label: "x", StartMinute: 0, EndMinute: 10, DrivingMinutes: 10},
		{Label: "x", StartMinute: 20, EndMinute: 30, DrivingMinutes: 10},
	}}
	assert.ErrorIs(t, dup.Validate(), ErrInvalidShift)
}

func TestNormalizeFillsDisplay(t *testing.T) {
	c := Catalog{Shifts: []Shift{{StartMinute: 305, EndMinute: 1445, DrivingMinutes: 60}}}.Normalize()
	assert.Equal(t, "0", c.Shifts[0].Label)
	assert.Equal(t, "05:05", c.Shifts[0].DisplayStart)
	assert.Equal(t, "24:05", c.Shifts[0].DisplayEnd)
	assert.Equal(t, "-00:10", FormatMinute(-10))
}

func TestRegulationsDefaults(t *testing.T) {
	var r Regulations
	r.SetDefaults()
	assert.Equal(t, 540, r.MaxDrivingTime)
	assert.Equal(t, 240, r.MaxDrivingWithoutBreak)
	assert.Equal(t, 0, r.MinWorkingTime)
	require.NoError(t, r.Validate())

	d := DefaultRegulations()
	assert.Equal(t, 25, d.Overhead())
	assert.Equal(t, 2, d.DriversLowerBound(720))
	assert.Equal(t, 1, d.DriversLowerBound(540))
	assert.Equal(t, 0, d.DriversLowerBound(0))
}

func TestRegulationsValidate(t *testing.T) {
	r := DefaultRegulations()
	r.MinWorkingTime = 800
	assert.Error(t, r.Validate())

	r = DefaultRegulations()
	r.MaxDrivingWithoutBreak = 600
	assert.Error(t, r.Validate())
}

func TestScheduleHelpers(t *testing.T) {
	s := Schedule{Rosters: []Roster{
		{Driver: 0, DrivingTime: 100, WorkingTime: 200, Assignments: []Assignment{{Shift: Shift{Label: "a"}}, {Shift: Shift{Label: "b"}, AfterBreak: true}}},
		{Driver: 1, DrivingTime: 50, WorkingTime: 75, Assignments: []Assignment{{Shift: Shift{Label: "c"}}}},
	}}
	assert.Equal(t, 150, s.TotalDriving())
	assert.Equal(t, 275, s.TotalWorking())
	assert.Equal(t, 1, s.DriverOf("c"))
	assert.Equal(t, -1, s.DriverOf("z"))
	assert.Equal(t, 1, s.Rosters[0].Breaks())
}
