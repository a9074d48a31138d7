package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anhhh1801/Capstone-ECM/internal/services"
	"github.com/anhhh1801/Capstone-ECM/pkg/response"
)

// CenterHandler exposes the center endpoints.
type CenterHandler struct {
	centers *services.CenterService
}

// NewCenterHandler constructs a CenterHandler.
func NewCenterHandler(centers *services.CenterService) *CenterHandler {
	return &CenterHandler{centers: centers}
}

type createCenterRequest struct {
	Name        string `json:"name" validate:"required,max=128"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=20"`
	Description string `json:"description"`
	AvatarImg   string `json:"avatar_img"`
	ManagerID   uint   `json:"manager_id" validate:"required"`
}

type updateCenterRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=128"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=20"`
	Description *string `json:"description"`
	AvatarImg   *string `json:"avatar_img"`
}

// POST /api/centers
func (h *CenterHandler) Create(c *gin.Context) {
	var body createCenterRequest
	if !bindAndValidate(c, &body) {
		return
	}

	center, err := h.centers.Create(requestContext(c), services.CreateCenterInput{
		Name:        body.Name,
		PhoneNumber: body.PhoneNumber,
		Description: body.Description,
		AvatarImg:   body.AvatarImg,
		ManagerID:   body.ManagerID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, center)
}

// GET /api/centers
func (h *CenterHandler) List(c *gin.Context) {
	if managerID := parseUintQuery(c, "manager_id"); managerID != 0 {
		centers, err := h.centers.ListByManager(requestContext(c), managerID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, centers)
		return
	}
	if teacherID := parseUintQuery(c, "teacher_id"); teacherID != 0 {
		centers, err := h.centers.ListTaughtBy(requestContext(c), teacherID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, centers)
		return
	}

	centers, err := h.centers.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, centers)
}

// GET /api/centers/:id
func (h *CenterHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	center, err := h.centers.GetByID(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, center)
}

// PUT /api/centers/:id
func (h *CenterHandler) Update(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var body updateCenterRequest
	if !bindAndValidate(c, &body) {
		return
	}

	center, err := h.centers.Update(requestContext(c), id, services.UpdateCenterInput{
		Name:        body.Name,
		PhoneNumber: body.PhoneNumber,
		Description: body.Description,
		AvatarImg:   body.AvatarImg,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, center)
}

// DELETE /api/centers/:id
func (h *CenterHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.centers.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Center deleted"})
}

// POST /api/centers/:id/connect/:userId
func (h *CenterHandler) Connect(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := parseUintParam(c, "userId")
	if !ok {
		return
	}

	if err := h.centers.Connect(requestContext(c), id, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "User connected to center"})
}
