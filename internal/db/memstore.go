package db

import (
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/pawcal-app/pawcal/internal/model"
)

// MemStore is a map-backed Store used by tests so they run without a
// database. Missing rows surface as sql.ErrNoRows, matching pgStore.
type MemStore struct {
	mu     sync.Mutex
	nextID int

	users     map[int]model.User
	schedules map[int]model.Schedule
	instances map[int]model.ScheduleInstance
	logs      []model.ReminderLog

	// DueQueryErr, when set, is returned by ListInstancesDueBetween to
	// simulate a store outage during a reminder scan.
	DueQueryErr error
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		users:     make(map[int]model.User),
		schedules: make(map[int]model.Schedule),
		instances: make(map[int]model.ScheduleInstance),
	}
}

func (m *MemStore) id() int {
	m.nextID++
	return m.nextID
}

func (m *MemStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return 0, errors.New("email already registered")
		}
	}
	u := model.User{
		ID:             m.id(),
		Email:          email,
		HashedPassword: hashedPassword,
		Name:           name,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *MemStore) GetUserByEmail(email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *MemStore) GetUserByID(id int) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := u
	return &out, nil
}

func (m *MemStore) UpdateUserProfile(id int, email string, name *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.Email = email
	u.Name = name
	u.UpdatedAt = time.Now()
	m.users[id] = u
	return nil
}

func (m *MemStore) CreateSchedule(in *model.Schedule) (*model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := *in
	s.ID = m.id()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	m.schedules[s.ID] = s
	out := s
	return &out, nil
}

func (m *MemStore) GetSchedule(id int) (*model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := s
	return &out, nil
}

func (m *MemStore) ListSchedules(ownerID int) ([]model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Schedule
	for _, s := range m.schedules {
		if s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) UpdateSchedule(in *model.Schedule) (*model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.schedules[in.ID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	s := *in
	s.OwnerID = old.OwnerID
	s.CreatedAt = old.CreatedAt
	s.UpdatedAt = time.Now()
	m.schedules[s.ID] = s
	out := s
	return &out, nil
}

func (m *MemStore) DeleteSchedule(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.schedules, id)
	for iid, inst := range m.instances {
		if inst.ScheduleID == id {
			delete(m.instances, iid)
		}
	}
	return nil
}

func (m *MemStore) ReplaceInstances(scheduleID int, occurrenceTimes []time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for iid, inst := range m.instances {
		if inst.ScheduleID == scheduleID {
			delete(m.instances, iid)
		}
	}
	for _, t := range occurrenceTimes {
		inst := model.ScheduleInstance{
			ID:             m.id(),
			ScheduleID:     scheduleID,
			OccurrenceTime: t,
		}
		m.instances[inst.ID] = inst
	}
	return nil
}

func (m *MemStore) ListInstancesBySchedule(scheduleID int) ([]model.ScheduleInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ScheduleInstance
	for _, inst := range m.instances {
		if inst.ScheduleID == scheduleID {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OccurrenceTime.Before(out[j].OccurrenceTime)
	})
	return out, nil
}

func (m *MemStore) GetInstance(id int) (*model.ScheduleInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.instances[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := inst
	return &out, nil
}

func (m *MemStore) SetInstanceCompleted(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.instances[id]
	if !ok {
		return sql.ErrNoRows
	}
	inst.Completed = true
	m.instances[id] = inst
	return nil
}

func (m *MemStore) ListInstancesDueBetween(from, to time.Time) ([]model.DueInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DueQueryErr != nil {
		return nil, m.DueQueryErr
	}
	var out []model.DueInstance
	for _, inst := range m.instances {
		if inst.OccurrenceTime.Before(from) || inst.OccurrenceTime.After(to) {
			continue
		}
		sc, ok := m.schedules[inst.ScheduleID]
		if !ok {
			continue
		}
		out = append(out, model.DueInstance{
			InstanceID:          inst.ID,
			ScheduleID:          sc.ID,
			OwnerID:             sc.OwnerID,
			Title:               sc.Title,
			OccurrenceTime:      inst.OccurrenceTime,
			RemindBeforeMinutes: sc.RemindBeforeMinutes,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OccurrenceTime.Before(out[j].OccurrenceTime)
	})
	return out, nil
}

func (m *MemStore) CreateReminderLog(instanceID int, reminderTime time.Time, message string, success bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, model.ReminderLog{
		ID:           m.id(),
		InstanceID:   instanceID,
		ReminderTime: reminderTime,
		Message:      message,
		Success:      success,
	})
	return nil
}

func (m *MemStore) ListReminderLogs(instanceID int) ([]model.ReminderLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ReminderLog
	for _, l := range m.logs {
		if l.InstanceID == instanceID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReminderTime.Before(out[j].ReminderTime)
	})
	return out, nil
}
