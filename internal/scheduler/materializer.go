// Package scheduler owns the lifecycle of persisted schedule instances:
// it rebuilds them from the recurrence expansion and tracks completion.
package scheduler

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pawcal-app/pawcal/internal/db"
	"github.com/pawcal-app/pawcal/internal/model"
	"github.com/pawcal-app/pawcal/internal/recurrence"
)

var (
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrInstanceNotFound = errors.New("instance not found")

	// ErrMissingAnchorTime / ErrMissingStartDate mean the stored schedule
	// violates its own invariants and cannot be expanded.
	ErrMissingAnchorTime = errors.New("schedule has no anchor time")
	ErrMissingStartDate  = errors.New("recurring schedule has no start date")
)

type Materializer struct {
	store db.Store

	// one mutex per schedule so two rebuilds of the same schedule are
	// serialized; rebuilds of different schedules run independently.
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewMaterializer(store db.Store) *Materializer {
	return &Materializer{store: store, locks: make(map[int]*sync.Mutex)}
}

func (m *Materializer) lockFor(scheduleID int) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[scheduleID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[scheduleID] = l
	}
	return l
}

// Rebuild replaces the schedule's persisted instance set with a freshly
// expanded one and returns it ordered by occurrence time.
//
// Rebuilding is idempotent in occurrence times: two calls on an unchanged
// schedule produce the same timestamps, though instance IDs differ.
// Completed flags do NOT survive a rebuild; every fresh instance starts
// pending again.
func (m *Materializer) Rebuild(scheduleID int) ([]model.ScheduleInstance, error) {
	l := m.lockFor(scheduleID)
	l.Lock()
	defer l.Unlock()

	schedule, err := m.store.GetSchedule(scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	times, err := m.occurrences(schedule)
	if err != nil {
		return nil, err
	}

	if err := m.store.ReplaceInstances(scheduleID, times); err != nil {
		return nil, err
	}

	log.Info().
		Int("schedule_id", scheduleID).
		Int("instances", len(times)).
		Msg("rebuilt schedule instances")

	return m.store.ListInstancesBySchedule(scheduleID)
}

// occurrences derives the concrete timestamps for a schedule: the single
// anchor time for one-off schedules, the rule expansion otherwise.
func (m *Materializer) occurrences(s *model.Schedule) ([]time.Time, error) {
	if s.AnchorTime == nil {
		return nil, ErrMissingAnchorTime
	}
	if !s.IsRecurring {
		return []time.Time{*s.AnchorTime}, nil
	}
	if s.StartDate == nil {
		return nil, ErrMissingStartDate
	}

	rule, err := RuleFromSchedule(s)
	if err != nil {
		return nil, err
	}
	return recurrence.Expand(rule, *s.AnchorTime, *s.StartDate, s.EndDate)
}

// RuleFromSchedule maps the stored rule columns onto a recurrence.Rule.
func RuleFromSchedule(s *model.Schedule) (recurrence.Rule, error) {
	if s.RecurrenceType == nil {
		return recurrence.Rule{}, recurrence.ErrUnsupportedType
	}
	t, err := recurrence.ParseType(*s.RecurrenceType)
	if err != nil {
		return recurrence.Rule{}, err
	}
	if s.RecurrenceInterval == nil || *s.RecurrenceInterval <= 0 {
		return recurrence.Rule{}, recurrence.ErrInvalidInterval
	}

	rule := recurrence.Rule{
		Type:        t,
		Interval:    *s.RecurrenceInterval,
		RepeatCount: s.RepeatCount,
		UntilDate:   s.UntilDate,
	}
	if s.DaysOfWeek != nil {
		rule.DaysOfWeek = recurrence.ParseWeekdays(*s.DaysOfWeek)
	}
	if s.DayOfMonth != nil {
		rule.DayOfMonth = *s.DayOfMonth
	}
	return rule, nil
}

// MarkCompleted flips an instance from pending to completed. Re-marking a
// completed instance is a no-op.
func (m *Materializer) MarkCompleted(instanceID int) error {
	instance, err := m.store.GetInstance(instanceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInstanceNotFound
		}
		return err
	}
	if instance.Completed {
		return nil
	}
	return m.store.SetInstanceCompleted(instanceID)
}

// Instances returns the persisted set for a schedule, ascending by
// occurrence time. An empty set is a valid result.
func (m *Materializer) Instances(scheduleID int) ([]model.ScheduleInstance, error) {
	return m.store.ListInstancesBySchedule(scheduleID)
}
