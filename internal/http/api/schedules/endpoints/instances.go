package endpoints

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pawcal-app/pawcal/internal/http/api"
	"github.com/pawcal-app/pawcal/internal/http/api/schedules/packets"
	"github.com/pawcal-app/pawcal/internal/model"
	"github.com/pawcal-app/pawcal/internal/scheduler"
)

// POST /schedules/:id/instances/rebuild
func (s *ScheduleController) rebuildInstances(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	schedule, apiErr := s.ownedSchedule(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	instances, err := s.mat.Rebuild(schedule.ID)
	if err != nil {
		return nil, rebuildError(err)
	}

	return instanceResponses(instances), nil
}

// GET /schedules/:id/instances
func (s *ScheduleController) listInstances(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	schedule, apiErr := s.ownedSchedule(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	instances, err := s.mat.Instances(schedule.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to list instances"}
	}

	return instanceResponses(instances), nil
}

// PUT /instances/:instance_id/complete
func (s *ScheduleController) completeInstance(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	instanceID, err := strconv.Atoi(ctx.Param("instance_id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid instance id"}
	}

	instance, err := s.store.GetInstance(instanceID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "instance not found"}
	}

	// ownership via instance -> schedule
	schedule, err := s.store.GetSchedule(instance.ScheduleID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "schedule not found"}
	}
	if schedule.OwnerID != user.ID {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	if err := s.mat.MarkCompleted(instanceID); err != nil {
		if errors.Is(err, scheduler.ErrInstanceNotFound) {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "instance not found"}
		}
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not complete instance"}
	}

	return gin.H{"message": "completed"}, nil
}

func instanceResponses(instances []model.ScheduleInstance) []packets.InstanceResponse {
	response := make([]packets.InstanceResponse, 0, len(instances))
	for _, it := range instances {
		response = append(response, packets.InstanceResponse{
			ID:             it.ID,
			ScheduleID:     it.ScheduleID,
			OccurrenceTime: it.OccurrenceTime,
			Completed:      it.Completed,
		})
	}
	return response
}
