// exposes a Store interface that is passed to API calls and background jobs
package db

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pawcal-app/pawcal/internal/model"
)

type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error

	// schedule functions
	CreateSchedule(s *model.Schedule) (*model.Schedule, error)
	GetSchedule(id int) (*model.Schedule, error)
	ListSchedules(ownerID int) ([]model.Schedule, error)
	UpdateSchedule(s *model.Schedule) (*model.Schedule, error)
	DeleteSchedule(id int) error

	// instance functions
	ReplaceInstances(scheduleID int, occurrenceTimes []time.Time) error
	ListInstancesBySchedule(scheduleID int) ([]model.ScheduleInstance, error)
	GetInstance(id int) (*model.ScheduleInstance, error)
	SetInstanceCompleted(id int) error

	// reminder functions
	ListInstancesDueBetween(from, to time.Time) ([]model.DueInstance, error)
	CreateReminderLog(instanceID int, reminderTime time.Time, message string, success bool) error
	ListReminderLogs(instanceID int) ([]model.ReminderLog, error)
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(conn *sqlx.DB) Store {
	return &pgStore{db: conn}
}
