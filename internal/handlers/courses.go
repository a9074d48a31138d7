package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anhhh1801/Capstone-ECM/internal/services"
	"github.com/anhhh1801/Capstone-ECM/pkg/errors"
	"github.com/anhhh1801/Capstone-ECM/pkg/response"
)

// CourseHandler exposes course, class-slot and invitation endpoints.
type CourseHandler struct {
	courses     *services.CourseService
	enrollments *services.EnrollmentService
}

// NewCourseHandler constructs a CourseHandler.
func NewCourseHandler(courses *services.CourseService, enrollments *services.EnrollmentService) *CourseHandler {
	return &CourseHandler{courses: courses, enrollments: enrollments}
}

type classSlotRequest struct {
	DayOfWeek int    `json:"day_of_week" validate:"required,min=1,max=7"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Recurring bool   `json:"recurring"`
}

type createCourseRequest struct {
	Name        string             `json:"name" validate:"required,max=128"`
	Subject     string             `json:"subject" validate:"omitempty,max=64"`
	Grade       int                `json:"grade" validate:"omitempty,min=1,max=12"`
	Description string             `json:"description"`
	StartDate   *time.Time         `json:"start_date"`
	EndDate     *time.Time         `json:"end_date"`
	CenterID    uint               `json:"center_id" validate:"required"`
	TeacherID   uint               `json:"teacher_id" validate:"required"`
	Slots       []classSlotRequest `json:"slots" validate:"dive"`
}

type updateCourseRequest struct {
	Name        *string    `json:"name" validate:"omitempty,max=128"`
	Subject     *string    `json:"subject" validate:"omitempty,max=64"`
	Grade       *int       `json:"grade" validate:"omitempty,min=1,max=12"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Status      *string    `json:"status"`
}

type inviteTeacherRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type respondInvitationRequest struct {
	Accept bool `json:"accept"`
}

type addCourseStudentRequest struct {
	StudentID     uint  `json:"student_id" validate:"required"`
	ScholarshipID *uint `json:"scholarship_id"`
}

// POST /api/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var body createCourseRequest
	if !bindAndValidate(c, &body) {
		return
	}

	slots := make([]services.ClassSlotInput, 0, len(body.Slots))
	for _, slot := range body.Slots {
		slots = append(slots, services.ClassSlotInput{
			DayOfWeek: slot.DayOfWeek,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			Recurring: slot.Recurring,
		})
	}

	course, err := h.courses.Create(requestContext(c), services.CreateCourseInput{
		Name:        body.Name,
		Subject:     body.Subject,
		Grade:       body.Grade,
		Description: body.Description,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
		CenterID:    body.CenterID,
		TeacherID:   body.TeacherID,
		Slots:       slots,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, course)
}

// GET /api/courses?center_id=&teacher_id=
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(requestContext(c),
		parseUintQuery(c, "center_id"),
		parseUintQuery(c, "teacher_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, courses)
}

// GET /api/courses/:id
func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	course, err := h.courses.GetByID(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, course)
}

// PUT /api/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var body updateCourseRequest
	if !bindAndValidate(c, &body) {
		return
	}

	course, err := h.courses.Update(requestContext(c), id, services.UpdateCourseInput{
		Name:        body.Name,
		Subject:     body.Subject,
		Grade:       body.Grade,
		Description: body.Description,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
		Status:      body.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, course)
}

// DELETE /api/courses/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.courses.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Course deleted"})
}

// POST /api/courses/:id/invite
func (h *CourseHandler) InviteTeacher(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var body inviteTeacherRequest
	if !bindAndValidate(c, &body) {
		return
	}

	course, err := h.courses.InviteTeacher(requestContext(c), id, body.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, course)
}

// POST /api/courses/:id/respond
func (h *CourseHandler) RespondToInvitation(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var body respondInvitationRequest
	if !bindAndValidate(c, &body) {
		return
	}

	course, err := h.courses.RespondToInvitation(requestContext(c), id, claims.UserID, body.Accept)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, course)
}

// GET /api/courses/invitations
func (h *CourseHandler) PendingInvitations(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	courses, err := h.courses.PendingInvitations(requestContext(c), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, courses)
}

// GET /api/courses/:id/students
func (h *CourseHandler) ListStudents(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	enrollments, err := h.enrollments.ListByCourse(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, enrollments)
}

// POST /api/courses/:id/students
func (h *CourseHandler) AddStudent(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var body addCourseStudentRequest
	if !bindAndValidate(c, &body) {
		return
	}

	enrollment, err := h.enrollments.AddStudent(requestContext(c), services.AddStudentInput{
		StudentID:     body.StudentID,
		CourseID:      id,
		ScholarshipID: body.ScholarshipID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, enrollment)
}

// DELETE /api/courses/:id/students/:studentId
func (h *CourseHandler) RemoveStudent(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	studentID, ok := parseUintParam(c, "studentId")
	if !ok {
		return
	}

	if err := h.enrollments.RemoveStudent(requestContext(c), id, studentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Student removed from course"})
}
