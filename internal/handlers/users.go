package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anhhh1801/Capstone-ECM/internal/services"
	"github.com/anhhh1801/Capstone-ECM/pkg/errors"
	"github.com/anhhh1801/Capstone-ECM/pkg/response"
)

// UserHandler exposes the account lifecycle and profile endpoints.
type UserHandler struct {
	accounts *services.AccountService
	users    *services.UserService
}

// NewUserHandler constructs a UserHandler from its services.
func NewUserHandler(accounts *services.AccountService, users *services.UserService) *UserHandler {
	return &UserHandler{accounts: accounts, users: users}
}

type registerTeacherRequest struct {
	FirstName string `json:"first_name" validate:"required,max=64"`
	LastName  string `json:"last_name" validate:"required,max=64"`
	Email     string `json:"email" validate:"required,email"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	FirstName   *string    `json:"first_name" validate:"omitempty,max=64"`
	LastName    *string    `json:"last_name" validate:"omitempty,max=64"`
	PhoneNumber *string    `json:"phone_number" validate:"omitempty,max=20"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	AvatarImg   *string    `json:"avatar_img"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type createStudentRequest struct {
	FirstName   string     `json:"first_name" validate:"required,max=64"`
	LastName    string     `json:"last_name" validate:"required,max=64"`
	Email       string     `json:"email" validate:"required,email"`
	PhoneNumber string     `json:"phone_number" validate:"omitempty,max=20"`
	DateOfBirth *time.Time `json:"date_of_birth"`
}

// POST /api/users/register-teacher
func (h *UserHandler) RegisterTeacher(c *gin.Context) {
	var body registerTeacherRequest
	if !bindAndValidate(c, &body) {
		return
	}

	msg, err := h.accounts.RegisterTeacher(requestContext(c), services.RegisterTeacherInput{
		FirstName:     body.FirstName,
		LastName:      body.LastName,
		PersonalEmail: body.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": msg})
}

// POST /api/users/verify-otp
func (h *UserHandler) VerifyOTP(c *gin.Context) {
	var body verifyOTPRequest
	if !bindAndValidate(c, &body) {
		return
	}

	msg, err := h.accounts.VerifyOTP(requestContext(c), body.Email, body.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": msg})
}

// POST /api/users/resend-otp?email=
func (h *UserHandler) ResendOTP(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		response.Error(c, errors.NewBadRequest("email query parameter is required"))
		return
	}

	msg, err := h.accounts.ResendOTP(requestContext(c), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": msg})
}

// POST /api/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var body loginRequest
	if !bindAndValidate(c, &body) {
		return
	}

	token, user, err := h.accounts.Login(requestContext(c), body.Email, body.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	user, err := h.users.GetByID(requestContext(c), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	user, err := h.users.GetByID(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var body updateProfileRequest
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.users.UpdateProfile(requestContext(c), id, services.UpdateProfileInput{
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		PhoneNumber: body.PhoneNumber,
		DateOfBirth: body.DateOfBirth,
		AvatarImg:   body.AvatarImg,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// POST /api/users/change-password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var body changePasswordRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.users.ChangePassword(requestContext(c), claims.UserID, body.OldPassword, body.NewPassword); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Password changed"})
}

// POST /api/users/deactivate
func (h *UserHandler) Deactivate(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.users.Deactivate(requestContext(c), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Account deactivated"})
}

// GET /api/users/search?keyword=
func (h *UserHandler) SearchStudents(c *gin.Context) {
	students, err := h.users.SearchStudents(requestContext(c), c.Query("keyword"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, students)
}

// POST /api/users/admin/create-student
func (h *UserHandler) CreateStudent(c *gin.Context) {
	var body createStudentRequest
	if !bindAndValidate(c, &body) {
		return
	}

	student, err := h.users.CreateStudent(requestContext(c), services.CreateStudentInput{
		FirstName:     body.FirstName,
		LastName:      body.LastName,
		PersonalEmail: body.Email,
		PhoneNumber:   body.PhoneNumber,
		DateOfBirth:   body.DateOfBirth,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, student)
}

// POST /api/users/admin/lock/:id
func (h *UserHandler) ToggleLock(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	msg, err := h.accounts.ToggleLock(requestContext(c), claims.UserID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": msg})
}

// GET /api/users/admin/stats
func (h *UserHandler) Stats(c *gin.Context) {
	stats, err := h.users.Stats(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// GET /api/users/admin/all
func (h *UserHandler) ListAll(c *gin.Context) {
	users, err := h.users.ListAll(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, users)
}

// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.users.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Account deleted"})
}
