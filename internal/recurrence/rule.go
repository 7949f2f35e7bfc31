package recurrence

import (
	"errors"
	"strings"
	"time"
)

type Type string

const (
	Daily   Type = "DAILY"
	Weekly  Type = "WEEKLY"
	Monthly Type = "MONTHLY"
)

var (
	// ErrUnsupportedType is returned for a rule type outside DAILY/WEEKLY/MONTHLY.
	ErrUnsupportedType = errors.New("unsupported recurrence type")
	// ErrInvalidInterval is returned for a non-positive interval. Intervals are
	// validated, never silently defaulted.
	ErrInvalidInterval = errors.New("recurrence interval must be at least 1")
)

// Rule describes how a schedule repeats. Only the fields relevant to Type
// are consulted; the rest are ignored.
type Rule struct {
	Type       Type
	Interval   int
	DaysOfWeek []time.Weekday // WEEKLY only
	DayOfMonth int            // MONTHLY only; 0 falls back to the start date's day
	// RepeatCount caps the number of emitted occurrences; nil means unbounded
	// by count.
	RepeatCount *int
	// UntilDate bounds generation in addition to the schedule's end date.
	UntilDate *time.Time
}

// ParseType normalizes a recurrence type string ("daily", "WEEKLY", ...).
func ParseType(s string) (Type, error) {
	switch Type(strings.ToUpper(strings.TrimSpace(s))) {
	case Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	default:
		return "", ErrUnsupportedType
	}
}

var weekdayNames = map[string]time.Weekday{
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
	"SUN": time.Sunday,
}

// ParseWeekdays parses a "MON,WED,FRI" style list, case-insensitive.
// Unknown tokens are skipped rather than rejected.
func ParseWeekdays(s string) []time.Weekday {
	var out []time.Weekday
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		if d, ok := weekdayNames[strings.ToUpper(strings.TrimSpace(tok))]; ok {
			out = append(out, d)
		}
	}
	return out
}

// FormatWeekdays renders a weekday set back into the stored "MON,WED" form.
func FormatWeekdays(days []time.Weekday) string {
	names := make([]string, 0, len(days))
	for _, d := range days {
		for name, wd := range weekdayNames {
			if wd == d {
				names = append(names, name)
				break
			}
		}
	}
	return strings.Join(names, ",")
}
