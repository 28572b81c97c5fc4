package calendar

import (
	"fmt"
	"time"
)

// MonthlyOverflowPolicy controls what happens when a monthly rule's day of
// month does not exist in the target month (e.g. the 31st in April).
type MonthlyOverflowPolicy string

const (
	// MonthlyOverflowRollover lets the date normalize into the following
	// month (Jan 31 + 1 month = Mar 3). This matches historical behavior.
	MonthlyOverflowRollover MonthlyOverflowPolicy = "rollover"
	// MonthlyOverflowClamp pins the date to the last valid day of the
	// target month (Jan 31 + 1 month = Feb 28/29).
	MonthlyOverflowClamp MonthlyOverflowPolicy = "clamp"
)

// ParseMonthlyOverflowPolicy parses a policy name from configuration.
func ParseMonthlyOverflowPolicy(s string) (MonthlyOverflowPolicy, error) {
	switch MonthlyOverflowPolicy(s) {
	case MonthlyOverflowRollover, MonthlyOverflowClamp:
		return MonthlyOverflowPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown monthly overflow policy %q", s)
	}
}

// Calendar carries the timezone and date-arithmetic policy for all
// day-granularity computations. It is passed explicitly everywhere so that
// occurrence and carry-forward math never depends on an ambient default.
type Calendar struct {
	loc    *time.Location
	policy MonthlyOverflowPolicy
}

// New creates a Calendar for the given location and overflow policy.
func New(loc *time.Location, policy MonthlyOverflowPolicy) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	if policy == "" {
		policy = MonthlyOverflowRollover
	}
	return Calendar{loc: loc, policy: policy}
}

// Location returns the calendar's timezone.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Policy returns the monthly overflow policy.
func (c Calendar) Policy() MonthlyOverflowPolicy {
	if c.policy == "" {
		return MonthlyOverflowRollover
	}
	return c.policy
}

// DayStart normalizes a timestamp to day granularity in the calendar's zone.
func (c Calendar) DayStart(t time.Time) time.Time {
	local := t.In(c.Location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.Location())
}

// Today returns the day containing now.
func (c Calendar) Today(now time.Time) time.Time {
	return c.DayStart(now)
}

// AddDays advances a day by n calendar days.
func (c Calendar) AddDays(day time.Time, n int) time.Time {
	return c.DayStart(day).AddDate(0, 0, n)
}

// AddMonths advances a day by n calendar months, applying the overflow
// policy when the source day of month does not exist in the target month.
func (c Calendar) AddMonths(day time.Time, n int) time.Time {
	d := c.DayStart(day)
	if c.Policy() == MonthlyOverflowClamp {
		first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, c.Location()).AddDate(0, n, 0)
		dom := d.Day()
		if last := c.DaysInMonth(first.Month(), first.Year()); dom > last {
			dom = last
		}
		return time.Date(first.Year(), first.Month(), dom, 0, 0, 0, 0, c.Location())
	}
	return d.AddDate(0, n, 0)
}

// DaysInMonth returns the number of days in the given month.
func (c Calendar) DaysInMonth(month time.Month, year int) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, c.Location())
	return first.AddDate(0, 1, -1).Day()
}

// SameDay reports whether two timestamps fall on the same calendar day.
func (c Calendar) SameDay(a, b time.Time) bool {
	return c.DayStart(a).Equal(c.DayStart(b))
}

// Weekday returns the weekday of a day numbered 1 (Sunday) through 7
// (Saturday).
func (c Calendar) Weekday(day time.Time) int {
	return int(day.In(c.Location()).Weekday()) + 1
}

// At recombines a day with the time-of-day portion of clock, producing an
// absolute timestamp in the calendar's zone. Used to carry a template's
// reminder time onto a materialized occurrence date.
func (c Calendar) At(day time.Time, clock time.Time) time.Time {
	d := c.DayStart(day)
	t := clock.In(c.Location())
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, c.Location())
}
