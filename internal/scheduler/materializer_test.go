package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawcal-app/pawcal/internal/db"
	"github.com/pawcal-app/pawcal/internal/model"
	"github.com/pawcal-app/pawcal/internal/scheduler"
)

func intPtr(v int) *int              { return &v }
func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }

func newUser(t *testing.T, store *db.MemStore) int {
	t.Helper()
	id, err := store.CreateUser("owner@example.com", "hash", nil)
	require.NoError(t, err)
	return id
}

func newWeeklySchedule(t *testing.T, store *db.MemStore, ownerID int) *model.Schedule {
	t.Helper()
	anchor := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	created, err := store.CreateSchedule(&model.Schedule{
		OwnerID:            ownerID,
		Title:              "Heartworm pill",
		IsRecurring:        true,
		AnchorTime:         timePtr(anchor),
		StartDate:          timePtr(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)),
		EndDate:            timePtr(time.Date(2024, time.January, 14, 0, 0, 0, 0, time.UTC)),
		RecurrenceType:     strPtr("WEEKLY"),
		RecurrenceInterval: intPtr(1),
		DaysOfWeek:         strPtr("MON,WED"),
	})
	require.NoError(t, err)
	return created
}

func TestRebuildWeeklySchedule(t *testing.T) {
	store := db.NewMemStore()
	mat := scheduler.NewMaterializer(store)
	sc := newWeeklySchedule(t, store, newUser(t, store))

	instances, err := mat.Rebuild(sc.ID)
	require.NoError(t, err)
	require.Len(t, instances, 4)

	want := []time.Time{
		time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 3, 9, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC),
	}
	for i, inst := range instances {
		assert.Equal(t, sc.ID, inst.ScheduleID)
		assert.True(t, want[i].Equal(inst.OccurrenceTime))
		assert.False(t, inst.Completed)
	}
}

func TestRebuildIsIdempotentInOccurrenceTimes(t *testing.T) {
	store := db.NewMemStore()
	mat := scheduler.NewMaterializer(store)
	sc := newWeeklySchedule(t, store, newUser(t, store))

	first, err := mat.Rebuild(sc.ID)
	require.NoError(t, err)
	second, err := mat.Rebuild(sc.ID)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, first[i].OccurrenceTime.Equal(second[i].OccurrenceTime))
	}
}

func TestRebuildResetsCompletion(t *testing.T) {
	store := db.NewMemStore()
	mat := scheduler.NewMaterializer(store)
	sc := newWeeklySchedule(t, store, newUser(t, store))

	instances, err := mat.Rebuild(sc.ID)
	require.NoError(t, err)
	require.NoError(t, mat.MarkCompleted(instances[0].ID))

	rebuilt, err := mat.Rebuild(sc.ID)
	require.NoError(t, err)
	for _, inst := range rebuilt {
		assert.False(t, inst.Completed)
	}
}

func TestRebuildSingleScheduleYieldsOneInstance(t *testing.T) {
	store := db.NewMemStore()
	mat := scheduler.NewMaterializer(store)
	ownerID := newUser(t, store)

	anchor := time.Date(2024, time.June, 1, 14, 30, 0, 0, time.UTC)
	sc, err := store.CreateSchedule(&model.Schedule{
		OwnerID:    ownerID,
		Title:      "Vet visit",
		AnchorTime: timePtr(anchor),
	})
	require.NoError(t, err)

	instances, err := mat.Rebuild(sc.ID)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.True(t, anchor.Equal(instances[0].OccurrenceTime))
}

func TestRebuildUnknownSchedule(t *testing.T) {
	store := db.NewMemStore()
	mat := scheduler.NewMaterializer(store)

	_, err := mat.Rebuild(999)
	assert.ErrorIs(t, err, scheduler.ErrScheduleNotFound)
}

func TestRebuildVacuousWeeklyRule(t *testing.T) {
	store := db.NewMemStore()
	mat := scheduler.NewMaterializer(store)
	ownerID := newUser(t, store)

	anchor := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	sc, err := store.CreateSchedule(&model.Schedule{
		OwnerID:            ownerID,
		Title:              "Never fires",
		IsRecurring:        true,
		AnchorTime:         timePtr(anchor),
		StartDate:          timePtr(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)),
		RecurrenceType:     strPtr("WEEKLY"),
		RecurrenceInterval: intPtr(1),
		DaysOfWeek:         strPtr(""),
	})
	require.NoError(t, err)

	instances, err := mat.Rebuild(sc.ID)
	require.NoError(t, err)
	assert.Empty(t, instances)
}

func TestMarkCompletedIsIdempotent(t *testing.T) {
	store := db.NewMemStore()
	mat := scheduler.NewMaterializer(store)
	sc := newWeeklySchedule(t, store, newUser(t, store))

	instances, err := mat.Rebuild(sc.ID)
	require.NoError(t, err)

	id := instances[0].ID
	require.NoError(t, mat.MarkCompleted(id))
	require.NoError(t, mat.MarkCompleted(id))

	got, err := store.GetInstance(id)
	require.NoError(t, err)
	assert.True(t, got.Completed)
}

func TestMarkCompletedUnknownInstance(t *testing.T) {
	store := db.NewMemStore()
	mat := scheduler.NewMaterializer(store)

	err := mat.MarkCompleted(12345)
	assert.ErrorIs(t, err, scheduler.ErrInstanceNotFound)
}
