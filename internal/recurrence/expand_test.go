package recurrence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawcal-app/pawcal/internal/recurrence"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

var nineAM = at(2024, time.January, 1, 9, 0)

func intPtr(v int) *int              { return &v }
func timePtr(t time.Time) *time.Time { return &t }

func TestDailyIntervalSpacing(t *testing.T) {
	rule := recurrence.Rule{Type: recurrence.Daily, Interval: 3}
	end := date(2024, time.January, 31)

	got, err := recurrence.Expand(rule, nineAM, date(2024, time.January, 1), &end)
	require.NoError(t, err)
	require.Len(t, got, 11)

	for i := 1; i < len(got); i++ {
		assert.Equal(t, 72*time.Hour, got[i].Sub(got[i-1]))
	}
	assert.Equal(t, at(2024, time.January, 1, 9, 0), got[0])
	assert.Equal(t, at(2024, time.January, 31, 9, 0), got[len(got)-1])
}

func TestWeeklyMondayWednesday(t *testing.T) {
	rule := recurrence.Rule{
		Type:       recurrence.Weekly,
		Interval:   1,
		DaysOfWeek: []time.Weekday{time.Monday, time.Wednesday},
	}
	end := date(2024, time.January, 14)

	got, err := recurrence.Expand(rule, nineAM, date(2024, time.January, 1), &end)
	require.NoError(t, err)

	want := []time.Time{
		at(2024, time.January, 1, 9, 0),
		at(2024, time.January, 3, 9, 0),
		at(2024, time.January, 8, 9, 0),
		at(2024, time.January, 10, 9, 0),
	}
	assert.Equal(t, want, got)
}

func TestWeeklyEmittedDaysStayInSet(t *testing.T) {
	days := []time.Weekday{time.Tuesday, time.Friday}
	rule := recurrence.Rule{Type: recurrence.Weekly, Interval: 2, DaysOfWeek: days}
	start := date(2024, time.March, 7)
	end := date(2024, time.May, 1)

	got, err := recurrence.Expand(rule, nineAM, start, &end)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	for _, occ := range got {
		assert.Contains(t, days, occ.Weekday())
		assert.False(t, occ.Before(start))
		assert.False(t, occ.After(end.Add(24*time.Hour)))
	}
}

func TestWeeklyEmptyDaysYieldsNothing(t *testing.T) {
	rule := recurrence.Rule{Type: recurrence.Weekly, Interval: 1}
	end := date(2024, time.February, 1)

	got, err := recurrence.Expand(rule, nineAM, date(2024, time.January, 1), &end)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMonthlyClampsShortMonths(t *testing.T) {
	rule := recurrence.Rule{Type: recurrence.Monthly, Interval: 1, DayOfMonth: 31}
	end := date(2024, time.July, 31)

	got, err := recurrence.Expand(rule, nineAM, date(2024, time.April, 10), &end)
	require.NoError(t, err)

	want := []time.Time{
		at(2024, time.April, 30, 9, 0), // April has no 31st
		at(2024, time.May, 31, 9, 0),
		at(2024, time.June, 30, 9, 0),
		at(2024, time.July, 31, 9, 0),
	}
	assert.Equal(t, want, got)
}

func TestMonthlyDefaultsToStartDay(t *testing.T) {
	rule := recurrence.Rule{Type: recurrence.Monthly, Interval: 1}
	end := date(2024, time.March, 31)

	got, err := recurrence.Expand(rule, nineAM, date(2024, time.January, 15), &end)
	require.NoError(t, err)

	want := []time.Time{
		at(2024, time.January, 15, 9, 0),
		at(2024, time.February, 15, 9, 0),
		at(2024, time.March, 15, 9, 0),
	}
	assert.Equal(t, want, got)
}

func TestMonthlyCrossesYearBoundary(t *testing.T) {
	rule := recurrence.Rule{Type: recurrence.Monthly, Interval: 2, DayOfMonth: 5}
	end := date(2025, time.March, 31)

	got, err := recurrence.Expand(rule, nineAM, date(2024, time.November, 5), &end)
	require.NoError(t, err)

	want := []time.Time{
		at(2024, time.November, 5, 9, 0),
		at(2025, time.January, 5, 9, 0),
		at(2025, time.March, 5, 9, 0),
	}
	assert.Equal(t, want, got)
}

func TestRepeatCountCapsEmissions(t *testing.T) {
	rule := recurrence.Rule{Type: recurrence.Daily, Interval: 1, RepeatCount: intPtr(5)}

	got, err := recurrence.Expand(rule, nineAM, date(2024, time.January, 1), nil)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, at(2024, time.January, 5, 9, 0), got[4])
}

func TestRepeatCountKeepsEarliestOccurrences(t *testing.T) {
	// days configured out of chronological order must not skew the cap
	rule := recurrence.Rule{
		Type:        recurrence.Weekly,
		Interval:    1,
		DaysOfWeek:  []time.Weekday{time.Wednesday, time.Monday},
		RepeatCount: intPtr(3),
	}
	end := date(2024, time.January, 14)

	got, err := recurrence.Expand(rule, nineAM, date(2024, time.January, 1), &end)
	require.NoError(t, err)

	want := []time.Time{
		at(2024, time.January, 1, 9, 0),
		at(2024, time.January, 3, 9, 0),
		at(2024, time.January, 8, 9, 0),
	}
	assert.Equal(t, want, got)
}

func TestZeroRepeatCountYieldsNothing(t *testing.T) {
	rule := recurrence.Rule{Type: recurrence.Daily, Interval: 1, RepeatCount: intPtr(0)}

	got, err := recurrence.Expand(rule, nineAM, date(2024, time.January, 1), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDefaultHorizonBoundsUnboundedRules(t *testing.T) {
	rule := recurrence.Rule{Type: recurrence.Daily, Interval: 1}

	got, err := recurrence.Expand(rule, nineAM, date(2024, time.January, 1), nil)
	require.NoError(t, err)
	// 2024-01-01 through 2024-04-01 inclusive
	require.Len(t, got, 92)
	assert.Equal(t, at(2024, time.April, 1, 9, 0), got[len(got)-1])
}

func TestUntilDateTightensEndDate(t *testing.T) {
	rule := recurrence.Rule{
		Type:      recurrence.Daily,
		Interval:  1,
		UntilDate: timePtr(date(2024, time.February, 1)),
	}
	end := date(2024, time.March, 1)

	got, err := recurrence.Expand(rule, nineAM, date(2024, time.January, 1), &end)
	require.NoError(t, err)
	require.Len(t, got, 32)
	assert.Equal(t, at(2024, time.February, 1, 9, 0), got[len(got)-1])
}

func TestNonPositiveIntervalRejected(t *testing.T) {
	for _, interval := range []int{0, -1} {
		rule := recurrence.Rule{Type: recurrence.Daily, Interval: interval}
		_, err := recurrence.Expand(rule, nineAM, date(2024, time.January, 1), nil)
		assert.ErrorIs(t, err, recurrence.ErrInvalidInterval)
	}
}

func TestUnsupportedTypeRejected(t *testing.T) {
	rule := recurrence.Rule{Type: recurrence.Type("YEARLY"), Interval: 1}
	_, err := recurrence.Expand(rule, nineAM, date(2024, time.January, 1), nil)
	assert.ErrorIs(t, err, recurrence.ErrUnsupportedType)
}

func TestParseType(t *testing.T) {
	got, err := recurrence.ParseType(" weekly ")
	require.NoError(t, err)
	assert.Equal(t, recurrence.Weekly, got)

	_, err = recurrence.ParseType("hourly")
	assert.ErrorIs(t, err, recurrence.ErrUnsupportedType)
}

func TestParseWeekdaysSkipsUnknownTokens(t *testing.T) {
	got := recurrence.ParseWeekdays("mon, WED,funday")
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday}, got)
}

func TestFormatWeekdaysRoundTrips(t *testing.T) {
	days := []time.Weekday{time.Monday, time.Friday}
	assert.Equal(t, days, recurrence.ParseWeekdays(recurrence.FormatWeekdays(days)))
}
