package recurrence

import (
	"sort"
	"time"
)

// defaultHorizonMonths bounds generation when a schedule has neither an end
// date nor an until date. Without it an unbounded rule would never terminate.
const defaultHorizonMonths = 3

// Expand turns a rule into the concrete occurrence timestamps it describes:
// one date+time per occurrence, ascending, deduplicated, finite.
//
// timeOfDay supplies the clock time stamped onto every occurrence. startDate
// is the first cycle's cursor position. The date bound is the tightest of
// endDate and rule.UntilDate; with neither set, generation stops three months
// after startDate. rule.RepeatCount independently caps the number of emitted
// occurrences, keeping the chronologically first ones, whichever bound
// triggers first.
func Expand(rule Rule, timeOfDay, startDate time.Time, endDate *time.Time) ([]time.Time, error) {
	if rule.Interval <= 0 {
		return nil, ErrInvalidInterval
	}

	start := dateOnly(startDate)
	bound := resolveBound(start, endDate, rule.UntilDate)

	var out []time.Time

	switch rule.Type {
	case Daily:
		for cur := start; !cur.After(bound); cur = cur.AddDate(0, 0, rule.Interval) {
			out = append(out, withTime(cur, timeOfDay))
		}

	case Weekly:
		// Each cycle visits the configured weekdays; an empty set is a valid
		// rule that just never fires.
		for cur := start; !cur.After(bound); cur = cur.AddDate(0, 0, 7*rule.Interval) {
			for _, day := range rule.DaysOfWeek {
				d := nextOrSameWeekday(cur, day)
				if !d.After(bound) {
					out = append(out, withTime(d, timeOfDay))
				}
			}
		}

	case Monthly:
		day := rule.DayOfMonth
		if day == 0 {
			day = start.Day()
		}
		// The cursor advances by calendar months with the day clamped, so a
		// rule anchored on the 31st doesn't drift through short months.
		y, m := start.Year(), start.Month()
		for {
			cur := clampedDate(y, m, start.Day(), start.Location())
			if cur.After(bound) {
				break
			}
			out = append(out, withTime(clampedDate(y, m, day, start.Location()), timeOfDay))
			m += time.Month(rule.Interval)
			for m > 12 {
				m -= 12
				y++
			}
		}

	default:
		return nil, ErrUnsupportedType
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	dedup := out[:0]
	for i, t := range out {
		if i == 0 || !t.Equal(out[i-1]) {
			dedup = append(dedup, t)
		}
	}
	// the cap applies to the sorted sequence, independent of the order the
	// weekdays were configured in
	if rule.RepeatCount != nil && len(dedup) > *rule.RepeatCount {
		dedup = dedup[:*rule.RepeatCount]
	}
	return dedup, nil
}

// resolveBound picks the tightest explicit date bound, or the default
// horizon when the rule is otherwise unbounded.
func resolveBound(start time.Time, endDate, untilDate *time.Time) time.Time {
	if endDate == nil && untilDate == nil {
		return start.AddDate(0, defaultHorizonMonths, 0)
	}
	var bound time.Time
	if endDate != nil {
		bound = dateOnly(*endDate)
	}
	if untilDate != nil {
		u := dateOnly(*untilDate)
		if bound.IsZero() || u.Before(bound) {
			bound = u
		}
	}
	return bound
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func withTime(d, timeOfDay time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(),
		timeOfDay.Hour(), timeOfDay.Minute(), timeOfDay.Second(), 0, d.Location())
}

func nextOrSameWeekday(d time.Time, day time.Weekday) time.Time {
	return d.AddDate(0, 0, (int(day)-int(d.Weekday())+7)%7)
}

// clampedDate builds a date with the day of month clamped to the month's
// length (day 31 in April yields April 30).
func clampedDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
