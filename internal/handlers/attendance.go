package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anhhh1801/Capstone-ECM/internal/services"
	"github.com/anhhh1801/Capstone-ECM/pkg/errors"
	"github.com/anhhh1801/Capstone-ECM/pkg/response"
)

// AttendanceHandler exposes attendance sheet endpoints.
type AttendanceHandler struct {
	attendance *services.AttendanceService
}

// NewAttendanceHandler constructs an AttendanceHandler.
func NewAttendanceHandler(attendance *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

type attendanceEntryRequest struct {
	StudentID uint   `json:"student_id" validate:"required"`
	Present   bool   `json:"present"`
	Note      string `json:"note" validate:"omitempty,max=255"`
}

type recordAttendanceRequest struct {
	ClassSlotID uint                     `json:"class_slot_id" validate:"required"`
	Date        time.Time                `json:"date" validate:"required"`
	Entries     []attendanceEntryRequest `json:"entries" validate:"required,min=1,dive"`
}

// POST /api/attendance
func (h *AttendanceHandler) Record(c *gin.Context) {
	var body recordAttendanceRequest
	if !bindAndValidate(c, &body) {
		return
	}

	entries := make([]services.AttendanceEntry, 0, len(body.Entries))
	for _, entry := range body.Entries {
		entries = append(entries, services.AttendanceEntry{
			StudentID: entry.StudentID,
			Present:   entry.Present,
			Note:      entry.Note,
		})
	}

	records, err := h.attendance.RecordBatch(requestContext(c), services.RecordBatchInput{
		ClassSlotID: body.ClassSlotID,
		Date:        body.Date,
		Entries:     entries,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, records)
}

// GET /api/attendance?class_slot_id=&date=
func (h *AttendanceHandler) ListBySlot(c *gin.Context) {
	slotID := parseUintQuery(c, "class_slot_id")
	if slotID == 0 {
		response.Error(c, errors.NewBadRequest("class_slot_id is required"))
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.Error(c, errors.NewBadRequest("date must be formatted as YYYY-MM-DD"))
		return
	}

	records, err := h.attendance.ListBySlotAndDate(requestContext(c), slotID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, records)
}

// GET /api/attendance/enrollment/:id
func (h *AttendanceHandler) ListByEnrollment(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	records, err := h.attendance.ListByEnrollment(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, records)
}
