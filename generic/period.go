package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - The scoring window
// =============================================================================

const (
	MinYear = 2000
	MaxYear = 2100
)

// Period is one local calendar month and its UTC equivalent.
// Every fact query is scoped to [UTCStart, UTCEnd].
//
// Periods are values; once resolved they are never modified.
type Period struct {
	Month      time.Month
	Year       int
	LocalStart time.Time
	LocalEnd   time.Time
	UTCStart   time.Time
	UTCEnd     time.Time
}

// ResolvePeriod builds the period for month/year in the business location.
// LocalStart is the first midnight of the month, LocalEnd is 23:59:59 on the
// last day.
func ResolvePeriod(month, year int, loc *time.Location) (Period, error) {
	if month < 1 || month > 12 || year < MinYear || year > MaxYear {
		return Period{}, &InvalidPeriodError{Month: month, Year: year}
	}
	if loc == nil {
		loc = BusinessLocation("")
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	nextYear, nextMonth := year, month+1
	if nextMonth > 12 {
		nextYear, nextMonth = year+1, 1
	}
	firstOfNext := time.Date(nextYear, time.Month(nextMonth), 1, 0, 0, 0, 0, loc)
	end := firstOfNext.Add(-time.Second)

	return Period{
		Month:      time.Month(month),
		Year:       year,
		LocalStart: start,
		LocalEnd:   end,
		UTCStart:   start.UTC(),
		UTCEnd:     end.UTC(),
	}, nil
}

// MustResolvePeriod is ResolvePeriod for tests and static fixtures.
func MustResolvePeriod(month, year int, loc *time.Location) Period {
	p, err := ResolvePeriod(month, year, loc)
	if err != nil {
		panic(err)
	}
	return p
}

// Contains returns true if t is within [UTCStart, UTCEnd].
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.UTCStart) && !t.After(p.UTCEnd)
}

// Days returns the number of calendar days in the month.
func (p Period) Days() int {
	return p.LocalEnd.Day()
}

// Location returns the business location the period was resolved in.
func (p Period) Location() *time.Location {
	return p.LocalStart.Location()
}

// Next returns the following month in the same location. It fails past
// MaxYear.
func (p Period) Next() (Period, error) {
	m, y := int(p.Month)+1, p.Year
	if m > 12 {
		m, y = 1, y+1
	}
	return ResolvePeriod(m, y, p.Location())
}

// Previous returns the preceding month in the same location. It fails before
// MinYear.
func (p Period) Previous() (Period, error) {
	m, y := int(p.Month)-1, p.Year
	if m < 1 {
		m, y = 12, y-1
	}
	return ResolvePeriod(m, y, p.Location())
}

// String returns "YYYY-MM".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// =============================================================================
// BUSINESS LOCATION
// =============================================================================

// DefaultTimezone is the workshop network's business timezone.
const DefaultTimezone = "Asia/Jakarta"

// wib is UTC+7 without DST, identical to Asia/Jakarta.
var wib = time.FixedZone("WIB", 7*60*60)

// BusinessLocation loads the named zone and never fails: unknown names get
// the fixed UTC+7 zone. Use LoadBusinessLocation to reject bad names.
func BusinessLocation(name string) *time.Location {
	loc, err := LoadBusinessLocation(name)
	if err != nil {
		return wib
	}
	return loc
}

// LoadBusinessLocation loads the named zone, defaulting to Asia/Jakarta.
// Hosts without tzdata get the fixed UTC+7 zone for Asia/Jakarta, which
// matches it exactly; any other zone that cannot be loaded is an error.
func LoadBusinessLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		if name == DefaultTimezone {
			return wib, nil
		}
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}
