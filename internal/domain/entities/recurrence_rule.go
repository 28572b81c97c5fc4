package entities

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/daybook/core/internal/domain/calendar"
)

// Frequency is the unit of a recurrence pattern.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// IsValid reports whether the frequency is a known value.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	default:
		return false
	}
}

// DefaultOccurrenceLimit bounds occurrence expansion against misconfigured
// rules.
const DefaultOccurrenceLimit = 100

// RecurrenceRule is a pure value encoding a repeat pattern. It is never
// persisted on its own; templates store it serialized via Encode.
//
// DaysOfWeek uses 1 = Sunday through 7 = Saturday and is meaningful only
// for weekly rules. DayOfMonth (1-31, 0 = unset) is meaningful only for
// monthly rules. A rule produces no occurrences on or after EndDate.
type RecurrenceRule struct {
	Frequency  Frequency
	Interval   int
	DaysOfWeek []int
	DayOfMonth int
	EndDate    *time.Time
}

// Validate checks that the rule's fields are in range.
func (r RecurrenceRule) Validate() error {
	if !r.Frequency.IsValid() {
		return fmt.Errorf("frequency %q: %w", r.Frequency, ErrRuleDecode)
	}
	if r.Interval < 1 {
		return fmt.Errorf("interval %d must be positive: %w", r.Interval, ErrRuleDecode)
	}
	for _, wd := range r.DaysOfWeek {
		if wd < 1 || wd > 7 {
			return fmt.Errorf("weekday %d out of range 1-7: %w", wd, ErrRuleDecode)
		}
	}
	if r.DayOfMonth < 0 || r.DayOfMonth > 31 {
		return fmt.Errorf("day of month %d out of range 1-31: %w", r.DayOfMonth, ErrRuleDecode)
	}
	return nil
}

// NextOccurrence computes the first occurrence strictly after the given
// day. The boolean is false when the rule produces no further occurrences,
// either because EndDate has been reached or the pattern never lands on a
// valid day within the search bound.
func (r RecurrenceRule) NextOccurrence(cal calendar.Calendar, after time.Time) (time.Time, bool) {
	day := cal.DayStart(after)
	if r.ended(cal, day) {
		return time.Time{}, false
	}

	interval := r.Interval
	if interval < 1 {
		interval = 1
	}

	var next time.Time
	switch r.Frequency {
	case FrequencyDaily:
		next = cal.AddDays(day, interval)
	case FrequencyWeekly:
		if len(r.DaysOfWeek) == 0 {
			next = cal.AddDays(day, interval*7)
		} else {
			candidate, ok := r.nextOnWeekdays(cal, day, interval)
			if !ok {
				return time.Time{}, false
			}
			next = candidate
		}
	case FrequencyMonthly:
		if r.DayOfMonth > 0 {
			// Anchor the candidate in the current day's year/month on the
			// configured day, then advance whole months. Overflow into a
			// shorter month follows the calendar's policy.
			candidate := time.Date(day.Year(), day.Month(), r.DayOfMonth, 0, 0, 0, 0, cal.Location())
			next = cal.AddMonths(candidate, interval)
		} else {
			next = cal.AddMonths(day, interval)
		}
	default:
		return time.Time{}, false
	}

	if r.ended(cal, next) {
		return time.Time{}, false
	}
	return next, true
}

// nextOnWeekdays realizes "every N weeks on these weekdays": scan forward
// from the day after the start; days outside the set are skipped for free,
// while each landing on a member day before N-1 week jumps have been
// consumed costs a full-week jump.
func (r RecurrenceRule) nextOnWeekdays(cal calendar.Calendar, day time.Time, interval int) (time.Time, bool) {
	var member [8]bool
	any := false
	for _, wd := range r.DaysOfWeek {
		if wd >= 1 && wd <= 7 {
			member[wd] = true
			any = true
		}
	}
	if !any {
		return time.Time{}, false
	}

	steps := 0
	d := cal.AddDays(day, 1)
	for i := 0; i < interval+7; i++ {
		if member[cal.Weekday(d)] {
			if steps >= interval-1 {
				return d, true
			}
			d = cal.AddDays(d, 7)
			steps++
			continue
		}
		d = cal.AddDays(d, 1)
	}
	return time.Time{}, false
}

func (r RecurrenceRule) ended(cal calendar.Calendar, day time.Time) bool {
	return r.EndDate != nil && !day.Before(cal.DayStart(*r.EndDate))
}

// Occurrences expands the rule into the ordered dates in (from, to],
// seeding the walk with from. At most limit dates are returned (the
// default bound applies when limit is not positive). The expansion is pure
// and restartable: identical inputs produce identical output.
func (r RecurrenceRule) Occurrences(cal calendar.Calendar, from, to time.Time, limit int) []time.Time {
	if limit <= 0 {
		limit = DefaultOccurrenceLimit
	}
	end := cal.DayStart(to)

	var dates []time.Time
	cursor := cal.DayStart(from)
	for len(dates) < limit {
		next, ok := r.NextOccurrence(cal, cursor)
		if !ok || next.After(end) {
			break
		}
		dates = append(dates, next)
		cursor = next
	}
	return dates
}

// recurrenceRuleWire is the stored wire form of a rule. Dates travel as
// RFC 3339 strings so the encoding stays platform independent.
type recurrenceRuleWire struct {
	Frequency  string `json:"frequency"`
	Interval   int    `json:"interval"`
	DaysOfWeek []int  `json:"days_of_week,omitempty"`
	DayOfMonth int    `json:"day_of_month,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
}

// Encode serializes the rule to its stored textual form.
func (r RecurrenceRule) Encode() (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	wire := recurrenceRuleWire{
		Frequency:  string(r.Frequency),
		Interval:   r.Interval,
		DaysOfWeek: r.DaysOfWeek,
		DayOfMonth: r.DayOfMonth,
	}
	if r.EndDate != nil {
		wire.EndDate = r.EndDate.Format(time.RFC3339)
	}
	raw, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("encode recurrence rule: %w", err)
	}
	return string(raw), nil
}

// DecodeRecurrenceRule parses a stored rule. Every failure mode wraps
// ErrRuleDecode; a date that fails to parse is an error, never a
// best-guess default.
func DecodeRecurrenceRule(raw string) (RecurrenceRule, error) {
	var wire recurrenceRuleWire
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return RecurrenceRule{}, fmt.Errorf("%w: %v", ErrRuleDecode, err)
	}

	rule := RecurrenceRule{
		Frequency:  Frequency(wire.Frequency),
		Interval:   wire.Interval,
		DaysOfWeek: wire.DaysOfWeek,
		DayOfMonth: wire.DayOfMonth,
	}
	if wire.EndDate != "" {
		end, err := time.Parse(time.RFC3339, wire.EndDate)
		if err != nil {
			return RecurrenceRule{}, fmt.Errorf("%w: end date: %v", ErrRuleDecode, err)
		}
		rule.EndDate = &end
	}

	if err := rule.Validate(); err != nil {
		return RecurrenceRule{}, err
	}
	return rule, nil
}
