package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/oticonnect/backend/internal/org/entity"
	"github.com/oticonnect/backend/internal/org/service"
)

// UserHandler profile and user administration endpoints
type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Profile GET /api/users/me
func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.svc.GetProfile(c.Request.Context(), GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, user)
}

// UpdateProfile PUT /api/users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req service.UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), req, GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, user)
}

// AvailableTimes GET /api/users/me/available-times
func (h *UserHandler) AvailableTimes(c *gin.Context) {
	times, err := h.svc.GetAvailableTimes(c.Request.Context(), GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"available_times": times})
}

// UpdateAvailableTimes PUT /api/users/me/available-times
func (h *UserHandler) UpdateAvailableTimes(c *gin.Context) {
	var req struct {
		AvailableTimes entity.JSONB `json:"available_times" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	times, err := h.svc.UpdateAvailableTimes(c.Request.Context(), req.AvailableTimes, GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"available_times": times})
}

// List GET /api/users (admin)
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context(), GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": users})
}
