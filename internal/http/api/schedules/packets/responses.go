package packets

import "time"

type ScheduleResponse struct {
	ID                  int        `json:"id"`
	OwnerID             int        `json:"owner_id"`
	Title               string     `json:"title"`
	IsRecurring         bool       `json:"is_recurring"`
	AnchorTime          *time.Time `json:"anchor_time,omitempty"`
	StartDate           *time.Time `json:"start_date,omitempty"`
	EndDate             *time.Time `json:"end_date,omitempty"`
	RemindBeforeMinutes *int       `json:"remind_before_minutes,omitempty"`
	RecurrenceType      *string    `json:"recurrence_type,omitempty"`
	Interval            *int       `json:"interval,omitempty"`
	DaysOfWeek          *string    `json:"days_of_week,omitempty"`
	DayOfMonth          *int       `json:"day_of_month,omitempty"`
	RepeatCount         *int       `json:"repeat_count,omitempty"`
	UntilDate           *time.Time `json:"until_date,omitempty"`
	CreatedAt           string     `json:"created_at"`
	UpdatedAt           string     `json:"updated_at"`
}

type InstanceResponse struct {
	ID             int       `json:"id"`
	ScheduleID     int       `json:"schedule_id"`
	OccurrenceTime time.Time `json:"occurrence_time"`
	Completed      bool      `json:"completed"`
}

type OccurrencesResponse struct {
	ScheduleID  int         `json:"schedule_id"`
	Occurrences []time.Time `json:"occurrences"`
}
