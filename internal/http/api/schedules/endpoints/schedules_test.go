package endpoints_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawcal-app/pawcal/internal/db"
	"github.com/pawcal-app/pawcal/internal/http/api"
	"github.com/pawcal-app/pawcal/internal/http/api/schedules/endpoints"
	"github.com/pawcal-app/pawcal/internal/http/middleware"
	"github.com/pawcal-app/pawcal/internal/scheduler"
)

const jwtSecret = "supersecret"

func setupRouter(store db.Store, mat *scheduler.Materializer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api",
		Auth:      true,
		SecretKey: jwtSecret,
		Store:     store,
	},
		endpoints.ScheduleModule(store, mat),
	)

	return r
}

func newToken(t *testing.T, store *db.MemStore, email string) string {
	t.Helper()
	userID, err := store.CreateUser(email, "hash", nil)
	require.NoError(t, err)
	token, err := middleware.GenerateJWT(userID, jwtSecret)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func weeklyPayload() map[string]any {
	return map[string]any{
		"title":                 "Heartworm pill",
		"is_recurring":          true,
		"anchor_time":           "2024-01-01T09:00:00Z",
		"start_date":            "2024-01-01T00:00:00Z",
		"end_date":              "2024-01-14T00:00:00Z",
		"recurrence_type":       "WEEKLY",
		"interval":              1,
		"days_of_week":          "MON,WED",
		"remind_before_minutes": 30,
	}
}

func TestCreateScheduleMaterializesInstances(t *testing.T) {
	store := db.NewMemStore()
	mat := scheduler.NewMaterializer(store)
	router := setupRouter(store, mat)
	token := newToken(t, store, "owner@example.com")

	w := doJSON(t, router, "POST", "/api/schedules", token, weeklyPayload())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, router, "GET", fmt.Sprintf("/api/schedules/%d/instances", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var instances []struct {
		ID             int    `json:"id"`
		OccurrenceTime string `json:"occurrence_time"`
		Completed      bool   `json:"completed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &instances))
	require.Len(t, instances, 4)
	assert.Equal(t, "2024-01-01T09:00:00Z", instances[0].OccurrenceTime)
}

func TestCreateScheduleValidation(t *testing.T) {
	store := db.NewMemStore()
	mat := scheduler.NewMaterializer(store)
	router := setupRouter(store, mat)
	token := newToken(t, store, "owner@example.com")

	payload := weeklyPayload()
	delete(payload, "start_date")

	w := doJSON(t, router, "POST", "/api/schedules", token, payload)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	payload = weeklyPayload()
	payload["interval"] = 0
	w = doJSON(t, router, "POST", "/api/schedules", token, payload)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	payload = weeklyPayload()
	payload["recurrence_type"] = "YEARLY"
	w = doJSON(t, router, "POST", "/api/schedules", token, payload)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestCompleteInstanceIsIdempotent(t *testing.T) {
	store := db.NewMemStore()
	mat := scheduler.NewMaterializer(store)
	router := setupRouter(store, mat)
	token := newToken(t, store, "owner@example.com")

	w := doJSON(t, router, "POST", "/api/schedules", token, map[string]any{
		"title":       "Vet visit",
		"anchor_time": "2024-06-01T14:30:00Z",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, router, "GET", fmt.Sprintf("/api/schedules/%d/instances", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var instances []struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &instances))
	require.Len(t, instances, 1)

	path := fmt.Sprintf("/api/instances/%d/complete", instances[0].ID)
	w = doJSON(t, router, "PUT", path, token, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doJSON(t, router, "PUT", path, token, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err := store.GetInstance(instances[0].ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
}

func TestCompleteUnknownInstance(t *testing.T) {
	store := db.NewMemStore()
	mat := scheduler.NewMaterializer(store)
	router := setupRouter(store, mat)
	token := newToken(t, store, "owner@example.com")

	w := doJSON(t, router, "PUT", "/api/instances/999/complete", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleOwnershipEnforced(t *testing.T) {
	store := db.NewMemStore()
	mat := scheduler.NewMaterializer(store)
	router := setupRouter(store, mat)
	ownerToken := newToken(t, store, "owner@example.com")
	otherToken := newToken(t, store, "other@example.com")

	w := doJSON(t, router, "POST", "/api/schedules", ownerToken, weeklyPayload())
	require.Equal(t, http.StatusOK, w.Code)

	var created struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, router, "GET", fmt.Sprintf("/api/schedules/%d", created.ID), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, "POST", fmt.Sprintf("/api/schedules/%d/instances/rebuild", created.ID), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRebuildUnknownSchedule(t *testing.T) {
	store := db.NewMemStore()
	mat := scheduler.NewMaterializer(store)
	router := setupRouter(store, mat)
	token := newToken(t, store, "owner@example.com")

	w := doJSON(t, router, "POST", "/api/schedules/999/instances/rebuild", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOccurrencePreview(t *testing.T) {
	store := db.NewMemStore()
	mat := scheduler.NewMaterializer(store)
	router := setupRouter(store, mat)
	token := newToken(t, store, "owner@example.com")

	w := doJSON(t, router, "POST", "/api/schedules", token, weeklyPayload())
	require.Equal(t, http.StatusOK, w.Code)

	var created struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, router, "GET", fmt.Sprintf("/api/schedules/%d/occurrences", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var preview struct {
		ScheduleID  int      `json:"schedule_id"`
		Occurrences []string `json:"occurrences"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &preview))
	assert.Equal(t, created.ID, preview.ScheduleID)
	assert.Len(t, preview.Occurrences, 4)
}
