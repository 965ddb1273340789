package generic_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
)

var jakarta = time.FixedZone("WIB", 7*60*60)

// =============================================================================
// PERIOD RESOLUTION TESTS
// =============================================================================

func TestResolvePeriod_January(t *testing.T) {
	// GIVEN: January 2025 in UTC+7
	// WHEN: Resolving the period
	// THEN: Local bounds are the calendar month, UTC bounds are shifted by 7h

	p, err := generic.ResolvePeriod(1, 2025, jakarta)
	require.NoError(t, err)

	assert.WithinDuration(t, time.Date(2025, 1, 1, 0, 0, 0, 0, jakarta), p.LocalStart, 0)
	assert.WithinDuration(t, time.Date(2025, 1, 31, 23, 59, 59, 0, jakarta), p.LocalEnd, 0)
	assert.WithinDuration(t, time.Date(2024, 12, 31, 17, 0, 0, 0, time.UTC), p.UTCStart, 0)
	assert.WithinDuration(t, time.Date(2025, 1, 31, 16, 59, 59, 0, time.UTC), p.UTCEnd, 0)
	assert.Equal(t, "2025-01", p.String())
	assert.Equal(t, 31, p.Days())
}

func TestResolvePeriod_DecemberRollsOver(t *testing.T) {
	// GIVEN: December 2024
	// WHEN: Resolving the period
	// THEN: The end is Dec 31 23:59:59, not a day of the next year

	p, err := generic.ResolvePeriod(12, 2024, jakarta)
	require.NoError(t, err)

	assert.WithinDuration(t, time.Date(2024, 12, 31, 23, 59, 59, 0, jakarta), p.LocalEnd, 0)
	next, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, "2025-01", next.String())
	prev, err := p.Previous()
	require.NoError(t, err)
	assert.Equal(t, "2024-11", prev.String())
}

func TestPeriod_NextPreviousOutOfRange(t *testing.T) {
	// GIVEN: The last and first resolvable months
	// WHEN: Stepping past the accepted year range
	// THEN: InvalidPeriod instead of a zero period

	_, err := generic.MustResolvePeriod(12, generic.MaxYear, jakarta).Next()
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)

	_, err = generic.MustResolvePeriod(1, generic.MinYear, jakarta).Previous()
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
}

func TestResolvePeriod_LeapFebruary(t *testing.T) {
	p := generic.MustResolvePeriod(2, 2024, jakarta)
	assert.Equal(t, 29, p.Days())
	prev, err := generic.MustResolvePeriod(1, 2025, jakarta).Previous()
	require.NoError(t, err)
	assert.Equal(t, "2024-12", prev.String())
}

func TestResolvePeriod_Invalid(t *testing.T) {
	// GIVEN: Months and years outside the accepted range
	// WHEN: Resolving
	// THEN: InvalidPeriod carrying the rejected values

	cases := []struct{ month, year int }{
		{0, 2025}, {13, 2025}, {1, 1999}, {1, 2101},
	}
	for _, c := range cases {
		_, err := generic.ResolvePeriod(c.month, c.year, jakarta)
		require.Error(t, err)
		assert.True(t, errors.Is(err, generic.ErrInvalidPeriod))
		assert.True(t, generic.IsClientError(err))

		var pe *generic.InvalidPeriodError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, c.month, pe.Month)
		assert.Equal(t, c.year, pe.Year)
	}
}

func TestPeriod_ContainsInclusiveBounds(t *testing.T) {
	p := generic.MustResolvePeriod(3, 2025, jakarta)

	assert.True(t, p.Contains(p.UTCStart))
	assert.True(t, p.Contains(p.UTCEnd))
	assert.False(t, p.Contains(p.UTCStart.Add(-time.Second)))
	assert.False(t, p.Contains(p.UTCEnd.Add(time.Second)))

	// Late evening on the last local day is still March
	assert.True(t, p.Contains(time.Date(2025, 3, 31, 20, 0, 0, 0, jakarta)))
	// 2025-04-01 02:00 local is March 31 19:00 UTC but belongs to April
	assert.False(t, p.Contains(time.Date(2025, 4, 1, 2, 0, 0, 0, jakarta)))
}

func TestBusinessLocation_Fallback(t *testing.T) {
	loc := generic.BusinessLocation("Not/AZone")
	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 7*60*60, offset)
}

func TestLoadBusinessLocation(t *testing.T) {
	loc, err := generic.LoadBusinessLocation("")
	require.NoError(t, err)
	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 7*60*60, offset)

	_, err = generic.LoadBusinessLocation("UTC")
	assert.NoError(t, err)

	_, err = generic.LoadBusinessLocation("Not/AZone")
	assert.Error(t, err)
}
