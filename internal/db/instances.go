package db

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pawcal-app/pawcal/internal/model"
)

// ReplaceInstances swaps a schedule's instance set for freshly generated
// occurrence times. Delete and insert run in one transaction so a reader
// never observes the schedule with a partially rebuilt set.
func (s *pgStore) ReplaceInstances(scheduleID int, occurrenceTimes []time.Time) error {
	tx, err := s.db.Beginx()
	if err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).Msg("ReplaceInstances begin failed")
		return err
	}
	if _, err := tx.Exec(`DELETE FROM schedule_instances WHERE schedule_id = $1;`, scheduleID); err != nil {
		tx.Rollback()
		log.Error().Err(err).Int("schedule_id", scheduleID).Msg("ReplaceInstances delete failed")
		return err
	}
	for _, t := range occurrenceTimes {
		if _, err := tx.Exec(`
		INSERT INTO schedule_instances (schedule_id, occurrence_time, completed)
		VALUES ($1, $2, false);`, scheduleID, t); err != nil {
			tx.Rollback()
			log.Error().Err(err).Int("schedule_id", scheduleID).Msg("ReplaceInstances insert failed")
			return err
		}
	}
	return tx.Commit()
}

func (s *pgStore) ListInstancesBySchedule(scheduleID int) ([]model.ScheduleInstance, error) {
	var out []model.ScheduleInstance
	const q = `
	SELECT id, schedule_id, occurrence_time, completed
	  FROM schedule_instances
	 WHERE schedule_id = $1
	 ORDER BY occurrence_time;`
	if err := s.db.Select(&out, q, scheduleID); err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).Msg("ListInstancesBySchedule failed")
		return nil, err
	}
	return out, nil
}

// fetches an instance by ID. Returns sql.ErrNoRows if not found.
func (s *pgStore) GetInstance(id int) (*model.ScheduleInstance, error) {
	var out model.ScheduleInstance
	err := s.db.Get(&out, `
	SELECT id, schedule_id, occurrence_time, completed
	  FROM schedule_instances WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *pgStore) SetInstanceCompleted(id int) error {
	_, err := s.db.Exec(`UPDATE schedule_instances SET completed = true WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("instance_id", id).Msg("SetInstanceCompleted failed")
	}
	return err
}

// ListInstancesDueBetween returns instances whose occurrence time falls in
// [from, to], joined with the parent schedule's reminder fields. The upper
// bound is inclusive: an occurrence exactly lookahead away has its reminder
// target due right now when the lead time equals the lookahead.
func (s *pgStore) ListInstancesDueBetween(from, to time.Time) ([]model.DueInstance, error) {
	var out []model.DueInstance
	const q = `
	SELECT i.id AS instance_id,
	       i.schedule_id,
	       sc.owner_id,
	       sc.title,
	       i.occurrence_time,
	       sc.remind_before_minutes
	  FROM schedule_instances i
	  JOIN schedules sc ON sc.id = i.schedule_id
	 WHERE i.occurrence_time >= $1
	   AND i.occurrence_time <= $2
	 ORDER BY i.occurrence_time;`
	if err := s.db.Select(&out, q, from, to); err != nil {
		log.Error().Err(err).Msg("ListInstancesDueBetween failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) CreateReminderLog(instanceID int, reminderTime time.Time, message string, success bool) error {
	_, err := s.db.Exec(`
	INSERT INTO reminder_logs (instance_id, reminder_time, message, success)
	VALUES ($1, $2, $3, $4);`, instanceID, reminderTime, message, success)
	if err != nil {
		log.Error().Err(err).Int("instance_id", instanceID).Msg("CreateReminderLog failed")
	}
	return err
}

func (s *pgStore) ListReminderLogs(instanceID int) ([]model.ReminderLog, error) {
	var out []model.ReminderLog
	const q = `
	SELECT id, instance_id, reminder_time, message, success
	  FROM reminder_logs
	 WHERE instance_id = $1
	 ORDER BY reminder_time;`
	if err := s.db.Select(&out, q, instanceID); err != nil {
		log.Error().Err(err).Int("instance_id", instanceID).Msg("ListReminderLogs failed")
		return nil, err
	}
	return out, nil
}
