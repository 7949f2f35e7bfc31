package packets

import "time"

// CreateScheduleRequest carries every schedule field; the rule fields only
// matter when is_recurring is true. Dates are RFC3339 timestamps whose
// time-of-day portion is ignored for start/end/until.
type CreateScheduleRequest struct {
	Title               string     `json:"title" binding:"required"`
	IsRecurring         bool       `json:"is_recurring"`
	AnchorTime          *time.Time `json:"anchor_time"`
	StartDate           *time.Time `json:"start_date"`
	EndDate             *time.Time `json:"end_date"`
	RemindBeforeMinutes *int       `json:"remind_before_minutes"`
	RecurrenceType      *string    `json:"recurrence_type"`
	Interval            *int       `json:"interval"`
	DaysOfWeek          *string    `json:"days_of_week"` // "MON,WED"
	DayOfMonth          *int       `json:"day_of_month"`
	RepeatCount         *int       `json:"repeat_count"`
	UntilDate           *time.Time `json:"until_date"`
}

// UpdateScheduleRequest is a partial update; nil fields are left alone.
type UpdateScheduleRequest struct {
	Title               *string    `json:"title"`
	IsRecurring         *bool      `json:"is_recurring"`
	AnchorTime          *time.Time `json:"anchor_time"`
	StartDate           *time.Time `json:"start_date"`
	EndDate             *time.Time `json:"end_date"`
	RemindBeforeMinutes *int       `json:"remind_before_minutes"`
	RecurrenceType      *string    `json:"recurrence_type"`
	Interval            *int       `json:"interval"`
	DaysOfWeek          *string    `json:"days_of_week"`
	DayOfMonth          *int       `json:"day_of_month"`
	RepeatCount         *int       `json:"repeat_count"`
	UntilDate           *time.Time `json:"until_date"`
}
