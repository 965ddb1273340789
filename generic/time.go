package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// CLOCK TIME - Wall-clock time of day in the business location
// =============================================================================

type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) on(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// =============================================================================
// INTERVAL
// =============================================================================

type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid reports a non-empty interval with both ends set.
func (i Interval) Valid() bool {
	return !i.Start.IsZero() && !i.End.IsZero() && i.End.After(i.Start)
}

// Intersect returns [max(starts), min(ends)]. The result may be invalid.
func (i Interval) Intersect(o Interval) Interval {
	start, end := i.Start, i.End
	if o.Start.After(start) {
		start = o.Start
	}
	if o.End.Before(end) {
		end = o.End
	}
	return Interval{Start: start, End: end}
}

func (i Interval) Duration() time.Duration {
	if !i.Valid() {
		return 0
	}
	return i.End.Sub(i.Start)
}

// =============================================================================
// BREAK WINDOW - Daily excluded time
// =============================================================================

// BreakWindow is a daily window excluded from worked time, e.g. lunch.
type BreakWindow struct {
	Start ClockTime
	End   ClockTime
}

// DefaultBreak is the 12:00-13:00 lunch break.
var DefaultBreak = BreakWindow{Start: ClockTime{Hour: 12}, End: ClockTime{Hour: 13}}

// WorkingHours returns the hours in [start, end] minus every daily break the
// span touches. Days are cut in loc so multi-day spans lose one break per day.
// Negative or empty spans yield 0.
func (b BreakWindow) WorkingHours(start, end time.Time, loc *time.Location) float64 {
	span := Interval{Start: start, End: end}
	if !span.Valid() {
		return 0
	}
	if loc == nil {
		loc = time.UTC
	}

	total := span.Duration()
	localStart := start.In(loc)
	localEnd := end.In(loc)
	day := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), 0, 0, 0, 0, loc)
	for !day.After(localEnd) {
		brk := Interval{Start: b.Start.on(day), End: b.End.on(day)}
		total -= span.Intersect(brk).Duration()
		day = day.AddDate(0, 0, 1)
	}
	if total < 0 {
		return 0
	}
	return total.Hours()
}

// ProductiveHours intersects presence and task first, then removes breaks.
// Work logged outside attendance is not productive time.
func (b BreakWindow) ProductiveHours(presence, task Interval, loc *time.Location) float64 {
	effective := presence.Intersect(task)
	if !effective.Valid() {
		return 0
	}
	return b.WorkingHours(effective.Start, effective.End, loc)
}

func (b BreakWindow) String() string { return b.Start.String() + "-" + b.End.String() }
