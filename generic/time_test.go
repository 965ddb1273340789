package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.March, day, hour, minute, 0, 0, jakarta)
}

// =============================================================================
// WORKING HOURS TESTS
// =============================================================================

func TestWorkingHours_SubtractsBreak(t *testing.T) {
	// GIVEN: A shift from 08:00 to 17:00 and the 12:00-13:00 break
	// WHEN: Computing working hours
	// THEN: 9h elapsed minus 1h break

	brk := generic.DefaultBreak
	assert.InDelta(t, 8.0, brk.WorkingHours(at(3, 8, 0), at(3, 17, 0), jakarta), 1e-9)
}

func TestWorkingHours_PartialAndNoOverlap(t *testing.T) {
	brk := generic.DefaultBreak

	assert.InDelta(t, 2.0, brk.WorkingHours(at(3, 13, 0), at(3, 15, 0), jakarta), 1e-9)
	assert.InDelta(t, 0.5, brk.WorkingHours(at(3, 12, 30), at(3, 13, 30), jakarta), 1e-9)
	assert.InDelta(t, 0.0, brk.WorkingHours(at(3, 12, 10), at(3, 12, 50), jakarta), 1e-9)
}

func TestWorkingHours_MultiDaySpanLosesOneBreakPerDay(t *testing.T) {
	// GIVEN: A span from day 1 08:00 to day 2 17:00 (33h)
	// WHEN: Computing working hours
	// THEN: Both daily breaks are removed

	brk := generic.DefaultBreak
	assert.InDelta(t, 31.0, brk.WorkingHours(at(3, 8, 0), at(4, 17, 0), jakarta), 1e-9)
}

func TestWorkingHours_NegativeSpanIsZero(t *testing.T) {
	brk := generic.DefaultBreak
	assert.Equal(t, 0.0, brk.WorkingHours(at(3, 17, 0), at(3, 8, 0), jakarta))
	assert.Equal(t, 0.0, brk.WorkingHours(time.Time{}, at(3, 8, 0), jakarta))
}

func TestWorkingHours_BreakIsLocalTime(t *testing.T) {
	// GIVEN: A span given in UTC covering 05:00-06:00 UTC (12:00-13:00 in UTC+7)
	// WHEN: Computing working hours in the business location
	// THEN: The whole span is the break

	brk := generic.DefaultBreak
	start := time.Date(2025, 3, 3, 5, 0, 0, 0, time.UTC)
	assert.InDelta(t, 0.0, brk.WorkingHours(start, start.Add(time.Hour), jakarta), 1e-9)
}

// =============================================================================
// PRODUCTIVE HOURS TESTS
// =============================================================================

func TestProductiveHours_IntersectsPresenceFirst(t *testing.T) {
	// GIVEN: Present 08:00-17:00
	// WHEN: Tasks start before check-in, span the break, or run after check-out
	// THEN: Only time inside attendance and outside the break counts

	brk := generic.DefaultBreak
	presence := generic.Interval{Start: at(3, 8, 0), End: at(3, 17, 0)}

	early := generic.Interval{Start: at(3, 7, 0), End: at(3, 10, 0)}
	assert.InDelta(t, 2.0, brk.ProductiveHours(presence, early, jakarta), 1e-9)

	lunch := generic.Interval{Start: at(3, 11, 0), End: at(3, 14, 0)}
	assert.InDelta(t, 2.0, brk.ProductiveHours(presence, lunch, jakarta), 1e-9)

	late := generic.Interval{Start: at(3, 18, 0), End: at(3, 19, 0)}
	assert.Equal(t, 0.0, brk.ProductiveHours(presence, late, jakarta))
}

func TestParseClockTime(t *testing.T) {
	c, err := generic.ParseClockTime("12:30")
	require.NoError(t, err)
	assert.Equal(t, generic.ClockTime{Hour: 12, Minute: 30}, c)
	assert.Equal(t, "12:30", c.String())

	_, err = generic.ParseClockTime("25:00")
	assert.Error(t, err)
}

func TestWorkingHours_CustomBreak(t *testing.T) {
	brk := generic.BreakWindow{
		Start: generic.ClockTime{Hour: 12},
		End:   generic.ClockTime{Hour: 12, Minute: 30},
	}
	assert.InDelta(t, 8.5, brk.WorkingHours(at(3, 8, 0), at(3, 17, 0), jakarta), 1e-9)
	assert.Equal(t, "12:00-12:30", brk.String())
}
