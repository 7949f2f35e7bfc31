package model

import "time"

// Schedule is one calendar entry. Recurring schedules carry their rule
// inline (recurrence_* columns); single schedules only use AnchorTime.
// AnchorTime doubles as the time-of-day stamped onto every generated
// occurrence of a recurring schedule.
type Schedule struct {
	ID                  int        `db:"id" json:"id"`
	OwnerID             int        `db:"owner_id" json:"owner_id"`
	Title               string     `db:"title" json:"title"`
	IsRecurring         bool       `db:"is_recurring" json:"is_recurring"`
	AnchorTime          *time.Time `db:"anchor_time" json:"anchor_time,omitempty"`
	StartDate           *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate             *time.Time `db:"end_date" json:"end_date,omitempty"`
	RemindBeforeMinutes *int       `db:"remind_before_minutes" json:"remind_before_minutes,omitempty"`

	// recurrence rule, present iff IsRecurring
	RecurrenceType     *string    `db:"recurrence_type" json:"recurrence_type,omitempty"`
	RecurrenceInterval *int       `db:"recurrence_interval" json:"recurrence_interval,omitempty"`
	DaysOfWeek         *string    `db:"days_of_week" json:"days_of_week,omitempty"` // "MON,WED"
	DayOfMonth         *int       `db:"day_of_month" json:"day_of_month,omitempty"`
	RepeatCount        *int       `db:"repeat_count" json:"repeat_count,omitempty"`
	UntilDate          *time.Time `db:"until_date" json:"until_date,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleInstance is one persisted occurrence of a schedule.
// Instances are only ever created by a rebuild and deleted in bulk when
// their schedule is rebuilt or removed.
type ScheduleInstance struct {
	ID             int       `db:"id" json:"id"`
	ScheduleID     int       `db:"schedule_id" json:"schedule_id"`
	OccurrenceTime time.Time `db:"occurrence_time" json:"occurrence_time"`
	Completed      bool      `db:"completed" json:"completed"`
}

// DueInstance is an instance joined with the parent schedule fields the
// reminder scanner needs.
type DueInstance struct {
	InstanceID          int       `db:"instance_id"`
	ScheduleID          int       `db:"schedule_id"`
	OwnerID             int       `db:"owner_id"`
	Title               string    `db:"title"`
	OccurrenceTime      time.Time `db:"occurrence_time"`
	RemindBeforeMinutes *int      `db:"remind_before_minutes"`
}

// ReminderLog is the append-only audit trail of reminder dispatches.
type ReminderLog struct {
	ID           int       `db:"id" json:"id"`
	InstanceID   int       `db:"instance_id" json:"instance_id"`
	ReminderTime time.Time `db:"reminder_time" json:"reminder_time"`
	Message      string    `db:"message" json:"message"`
	Success      bool      `db:"success" json:"success"`
}
