package endpoints

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/pawcal-app/pawcal/internal/db"
	"github.com/pawcal-app/pawcal/internal/http/api"
	"github.com/pawcal-app/pawcal/internal/http/api/schedules/packets"
	"github.com/pawcal-app/pawcal/internal/model"
	"github.com/pawcal-app/pawcal/internal/recurrence"
	"github.com/pawcal-app/pawcal/internal/scheduler"
)

type ScheduleController struct {
	store db.Store
	mat   *scheduler.Materializer
}

func NewScheduleController(store db.Store, mat *scheduler.Materializer) *ScheduleController {
	return &ScheduleController{store: store, mat: mat}
}

func ScheduleModule(store db.Store, mat *scheduler.Materializer) api.Module {
	ctl := NewScheduleController(store, mat)
	return api.ModuleFunc(func(c *api.Controller) {
		// schedules
		c.POST("/schedules", ctl.createSchedule)
		c.GET("/schedules", ctl.listSchedules)
		c.GET("/schedules/:id", ctl.getSchedule)
		c.PUT("/schedules/:id", ctl.updateSchedule)
		c.DELETE("/schedules/:id", ctl.deleteSchedule)

		// occurrence preview (no persistence)
		c.GET("/schedules/:id/occurrences", ctl.listOccurrences)

		// persisted instances
		c.POST("/schedules/:id/instances/rebuild", ctl.rebuildInstances)
		c.GET("/schedules/:id/instances", ctl.listInstances)
		c.PUT("/instances/:instance_id/complete", ctl.completeInstance)
	})
}

// loads the schedule and verifies it belongs to the caller.
func (s *ScheduleController) ownedSchedule(ctx *gin.Context, user *model.User) (*model.Schedule, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid schedule id"}
	}
	schedule, err := s.store.GetSchedule(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "schedule not found"}
	}
	if schedule.OwnerID != user.ID {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return schedule, nil
}

// validateSchedule enforces the create/update invariants: recurring entries
// need a rule and a start date, single entries need an anchor time.
func validateSchedule(s *model.Schedule) *api.APIError {
	bad := func(msg string) *api.APIError {
		return &api.APIError{Code: http.StatusBadRequest, Message: msg}
	}

	if !s.IsRecurring {
		if s.AnchorTime == nil {
			return bad("single schedules must specify anchor_time")
		}
		return nil
	}

	if s.RecurrenceType == nil || strings.TrimSpace(*s.RecurrenceType) == "" {
		return bad("recurring schedules must specify recurrence_type")
	}
	recurrenceType, err := recurrence.ParseType(*s.RecurrenceType)
	if err != nil {
		return bad("recurrence_type must be one of DAILY, WEEKLY, MONTHLY")
	}
	if s.RecurrenceInterval == nil || *s.RecurrenceInterval <= 0 {
		return bad("interval must be at least 1")
	}
	if recurrenceType == recurrence.Weekly {
		if s.DaysOfWeek == nil || len(recurrence.ParseWeekdays(*s.DaysOfWeek)) == 0 {
			return bad("weekly schedules must specify days_of_week")
		}
	}
	if s.StartDate == nil {
		return bad("recurring schedules must specify start_date")
	}
	if s.AnchorTime == nil {
		return bad("recurring schedules must specify anchor_time for the time of day")
	}
	if s.EndDate != nil && s.EndDate.Before(*s.StartDate) {
		return bad("end_date cannot precede start_date")
	}
	if s.RepeatCount != nil && *s.RepeatCount < 0 {
		return bad("repeat_count cannot be negative")
	}
	if s.DayOfMonth != nil && (*s.DayOfMonth < 1 || *s.DayOfMonth > 31) {
		return bad("day_of_month must be between 1 and 31")
	}
	return nil
}

func (s *ScheduleController) createSchedule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateScheduleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	schedule := &model.Schedule{
		OwnerID:             user.ID,
		Title:               request.Title,
		IsRecurring:         request.IsRecurring,
		AnchorTime:          request.AnchorTime,
		RemindBeforeMinutes: request.RemindBeforeMinutes,
	}
	if request.IsRecurring {
		schedule.StartDate = request.StartDate
		schedule.EndDate = request.EndDate
		schedule.RecurrenceType = request.RecurrenceType
		schedule.RecurrenceInterval = request.Interval
		schedule.DaysOfWeek = request.DaysOfWeek
		schedule.DayOfMonth = request.DayOfMonth
		schedule.RepeatCount = request.RepeatCount
		schedule.UntilDate = request.UntilDate
	}

	if apiErr := validateSchedule(schedule); apiErr != nil {
		return nil, apiErr
	}

	created, err := s.store.CreateSchedule(schedule)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create schedule"}
	}

	if _, err := s.mat.Rebuild(created.ID); err != nil {
		// schedule row exists but has no instances; surface the failure
		log.Error().Err(err).Int("schedule_id", created.ID).Msg("instance rebuild after create failed")
		return nil, rebuildError(err)
	}

	return scheduleResponse(created), nil
}

func (s *ScheduleController) listSchedules(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	list, err := s.store.ListSchedules(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to list schedules"}
	}

	response := make([]packets.ScheduleResponse, 0, len(list))
	for i := range list {
		response = append(response, scheduleResponse(&list[i]))
	}
	return response, nil
}

func (s *ScheduleController) getSchedule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	schedule, apiErr := s.ownedSchedule(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return scheduleResponse(schedule), nil
}

func (s *ScheduleController) updateSchedule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	schedule, apiErr := s.ownedSchedule(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.UpdateScheduleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if request.Title != nil && strings.TrimSpace(*request.Title) != "" {
		schedule.Title = *request.Title
	}
	if request.IsRecurring != nil {
		schedule.IsRecurring = *request.IsRecurring
	}
	if request.AnchorTime != nil {
		schedule.AnchorTime = request.AnchorTime
	}
	if request.RemindBeforeMinutes != nil {
		schedule.RemindBeforeMinutes = request.RemindBeforeMinutes
	}

	if !schedule.IsRecurring {
		// switching to (or staying) single clears the rule entirely
		schedule.StartDate = nil
		schedule.EndDate = nil
		schedule.RecurrenceType = nil
		schedule.RecurrenceInterval = nil
		schedule.DaysOfWeek = nil
		schedule.DayOfMonth = nil
		schedule.RepeatCount = nil
		schedule.UntilDate = nil
	} else {
		if request.RecurrenceType != nil {
			schedule.RecurrenceType = request.RecurrenceType
		}
		if request.Interval != nil {
			schedule.RecurrenceInterval = request.Interval
		}
		if request.DaysOfWeek != nil {
			schedule.DaysOfWeek = request.DaysOfWeek
		}
		if request.DayOfMonth != nil {
			schedule.DayOfMonth = request.DayOfMonth
		}
		if request.RepeatCount != nil {
			schedule.RepeatCount = request.RepeatCount
		}
		if request.StartDate != nil {
			schedule.StartDate = request.StartDate
		}
		if request.EndDate != nil {
			schedule.EndDate = request.EndDate
		}
		if request.UntilDate != nil {
			schedule.UntilDate = request.UntilDate
		}
	}

	if apiErr := validateSchedule(schedule); apiErr != nil {
		return nil, apiErr
	}

	updated, err := s.store.UpdateSchedule(schedule)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update schedule"}
	}

	if _, err := s.mat.Rebuild(updated.ID); err != nil {
		log.Error().Err(err).Int("schedule_id", updated.ID).Msg("instance rebuild after update failed")
		return nil, rebuildError(err)
	}

	return scheduleResponse(updated), nil
}

func (s *ScheduleController) deleteSchedule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	schedule, apiErr := s.ownedSchedule(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := s.store.DeleteSchedule(schedule.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete schedule"}
	}

	return gin.H{"message": "deleted"}, nil
}

// GET /schedules/:id/occurrences expands the rule without touching the
// persisted instance set, for calendar previews.
func (s *ScheduleController) listOccurrences(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	schedule, apiErr := s.ownedSchedule(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	if !schedule.IsRecurring {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "schedule is not recurring"}
	}
	if schedule.AnchorTime == nil || schedule.StartDate == nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "schedule is missing anchor_time or start_date"}
	}

	rule, err := scheduler.RuleFromSchedule(schedule)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	occurrences, err := recurrence.Expand(rule, *schedule.AnchorTime, *schedule.StartDate, schedule.EndDate)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	return packets.OccurrencesResponse{ScheduleID: schedule.ID, Occurrences: occurrences}, nil
}

// maps a rebuild failure onto the caller's fault or ours.
func rebuildError(err error) *api.APIError {
	switch {
	case errors.Is(err, scheduler.ErrScheduleNotFound):
		return &api.APIError{Code: http.StatusNotFound, Message: "schedule not found"}
	case errors.Is(err, recurrence.ErrInvalidInterval),
		errors.Is(err, recurrence.ErrUnsupportedType),
		errors.Is(err, scheduler.ErrMissingAnchorTime),
		errors.Is(err, scheduler.ErrMissingStartDate):
		return &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	default:
		return &api.APIError{Code: http.StatusInternalServerError, Message: "could not rebuild instances"}
	}
}

func scheduleResponse(s *model.Schedule) packets.ScheduleResponse {
	return packets.ScheduleResponse{
		ID:                  s.ID,
		OwnerID:             s.OwnerID,
		Title:               s.Title,
		IsRecurring:         s.IsRecurring,
		AnchorTime:          s.AnchorTime,
		StartDate:           s.StartDate,
		EndDate:             s.EndDate,
		RemindBeforeMinutes: s.RemindBeforeMinutes,
		RecurrenceType:      s.RecurrenceType,
		Interval:            s.RecurrenceInterval,
		DaysOfWeek:          s.DaysOfWeek,
		DayOfMonth:          s.DayOfMonth,
		RepeatCount:         s.RepeatCount,
		UntilDate:           s.UntilDate,
		CreatedAt:           s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           s.UpdatedAt.Format(time.RFC3339),
	}
}
