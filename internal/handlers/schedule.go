package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anhhh1801/Capstone-ECM/internal/services"
	"github.com/anhhh1801/Capstone-ECM/pkg/response"
)

// ScheduleHandler exposes weekly timetable endpoints.
type ScheduleHandler struct {
	schedules *services.ScheduleService
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(schedules *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

// GET /api/schedule/teacher/:id
func (h *ScheduleHandler) ForTeacher(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.schedules.ForTeacher(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, entries)
}

// GET /api/schedule/student/:id
func (h *ScheduleHandler) ForStudent(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.schedules.ForStudent(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, entries)
}
