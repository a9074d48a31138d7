package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anhhh1801/Capstone-ECM/internal/services"
	"github.com/anhhh1801/Capstone-ECM/pkg/response"
)

// EnrollmentHandler exposes enrollment, score and scholarship endpoints.
type EnrollmentHandler struct {
	enrollments *services.EnrollmentService
}

// NewEnrollmentHandler constructs an EnrollmentHandler.
func NewEnrollmentHandler(enrollments *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

type addStudentRequest struct {
	StudentID     uint  `json:"student_id" validate:"required"`
	CourseID      uint  `json:"course_id" validate:"required"`
	ScholarshipID *uint `json:"scholarship_id"`
}

type updateScoresRequest struct {
	ProgressScore *float32 `json:"progress_score" validate:"omitempty,min=0,max=10"`
	TestScore     *float32 `json:"test_score" validate:"omitempty,min=0,max=10"`
	FinalScore    *float32 `json:"final_score" validate:"omitempty,min=0,max=10"`
	Performance   *string  `json:"performance" validate:"omitempty,max=32"`
}

type createScholarshipRequest struct {
	Name     string  `json:"name" validate:"required,max=128"`
	Discount float32 `json:"discount" validate:"min=0,max=100"`
}

// POST /api/enrollments/add-student
func (h *EnrollmentHandler) AddStudent(c *gin.Context) {
	var body addStudentRequest
	if !bindAndValidate(c, &body) {
		return
	}

	enrollment, err := h.enrollments.AddStudent(requestContext(c), services.AddStudentInput{
		StudentID:     body.StudentID,
		CourseID:      body.CourseID,
		ScholarshipID: body.ScholarshipID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, enrollment)
}

// GET /api/enrollments/:id
func (h *EnrollmentHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	enrollment, err := h.enrollments.GetByID(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, enrollment)
}

// PUT /api/enrollments/:id/scores
func (h *EnrollmentHandler) UpdateScores(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var body updateScoresRequest
	if !bindAndValidate(c, &body) {
		return
	}

	enrollment, err := h.enrollments.UpdateScores(requestContext(c), id, services.UpdateScoresInput{
		ProgressScore: body.ProgressScore,
		TestScore:     body.TestScore,
		FinalScore:    body.FinalScore,
		Performance:   body.Performance,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, enrollment)
}

// GET /api/scholarships
func (h *EnrollmentHandler) ListScholarships(c *gin.Context) {
	scholarships, err := h.enrollments.ListScholarships(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, scholarships)
}

// POST /api/scholarships
func (h *EnrollmentHandler) CreateScholarship(c *gin.Context) {
	var body createScholarshipRequest
	if !bindAndValidate(c, &body) {
		return
	}

	scholarship, err := h.enrollments.CreateScholarship(requestContext(c), body.Name, body.Discount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, scholarship)
}
