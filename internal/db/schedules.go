package db

import (
	"github.com/rs/zerolog/log"

	"github.com/pawcal-app/pawcal/internal/model"
)

const scheduleColumns = `
	id, owner_id, title, is_recurring, anchor_time, start_date, end_date,
	remind_before_minutes, recurrence_type, recurrence_interval, days_of_week,
	day_of_month, repeat_count, until_date, created_at, updated_at`

func (s *pgStore) CreateSchedule(in *model.Schedule) (*model.Schedule, error) {
	var out model.Schedule
	const q = `
	INSERT INTO schedules
	  (owner_id, title, is_recurring, anchor_time, start_date, end_date,
	   remind_before_minutes, recurrence_type, recurrence_interval, days_of_week,
	   day_of_month, repeat_count, until_date, created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13, now(), now())
	RETURNING ` + scheduleColumns + `;`
	err := s.db.Get(&out, q,
		in.OwnerID, in.Title, in.IsRecurring, in.AnchorTime, in.StartDate, in.EndDate,
		in.RemindBeforeMinutes, in.RecurrenceType, in.RecurrenceInterval, in.DaysOfWeek,
		in.DayOfMonth, in.RepeatCount, in.UntilDate)
	if err != nil {
		log.Error().Err(err).Msg("CreateSchedule failed")
		return nil, err
	}
	return &out, nil
}

// fetches a schedule by ID. Returns sql.ErrNoRows if not found.
func (s *pgStore) GetSchedule(id int) (*model.Schedule, error) {
	var out model.Schedule
	err := s.db.Get(&out, `SELECT `+scheduleColumns+` FROM schedules WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *pgStore) ListSchedules(ownerID int) ([]model.Schedule, error) {
	var out []model.Schedule
	const q = `
	SELECT ` + scheduleColumns + `
	  FROM schedules
	 WHERE owner_id = $1
	 ORDER BY id;`
	if err := s.db.Select(&out, q, ownerID); err != nil {
		log.Error().Err(err).Msg("ListSchedules failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) UpdateSchedule(in *model.Schedule) (*model.Schedule, error) {
	var out model.Schedule
	const q = `
	UPDATE schedules SET
	  title = $2,
	  is_recurring = $3,
	  anchor_time = $4,
	  start_date = $5,
	  end_date = $6,
	  remind_before_minutes = $7,
	  recurrence_type = $8,
	  recurrence_interval = $9,
	  days_of_week = $10,
	  day_of_month = $11,
	  repeat_count = $12,
	  until_date = $13,
	  updated_at = now()
	WHERE id = $1
	RETURNING ` + scheduleColumns + `;`
	err := s.db.Get(&out, q,
		in.ID, in.Title, in.IsRecurring, in.AnchorTime, in.StartDate, in.EndDate,
		in.RemindBeforeMinutes, in.RecurrenceType, in.RecurrenceInterval, in.DaysOfWeek,
		in.DayOfMonth, in.RepeatCount, in.UntilDate)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", in.ID).Msg("UpdateSchedule failed")
		return nil, err
	}
	return &out, nil
}

// deletes a schedule; instances and reminder logs cascade via FK.
func (s *pgStore) DeleteSchedule(id int) error {
	_, err := s.db.Exec(`DELETE FROM schedules WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", id).Msg("DeleteSchedule failed")
	}
	return err
}
