package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/oticonnect/backend/internal/org/service"
)

// TransitionHandler role transition, handover and retirement endpoints
type TransitionHandler struct {
	svc *service.TransitionService
}

func NewTransitionHandler(svc *service.TransitionService) *TransitionHandler {
	return &TransitionHandler{svc: svc}
}

// TransitionRole POST /api/users/:id/transition (admin)
func (h *TransitionHandler) TransitionRole(c *gin.Context) {
	var req service.TransitionRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.svc.TransitionRole(c.Request.Context(), c.Param("id"), req, GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"user": user, "message": "role transitioned to " + req.NewRole})
}

// CompleteHandover POST /api/users/:id/handover/complete
func (h *TransitionHandler) CompleteHandover(c *gin.Context) {
	user, err := h.svc.CompleteHandover(c.Request.Context(), c.Param("id"), GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"user": user, "message": "handover completed"})
}

// RequestRetirement POST /api/retirement/request
func (h *TransitionHandler) RequestRetirement(c *gin.Context) {
	user, err := h.svc.RequestRetirement(c.Request.Context(), GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"user": user, "message": "retirement requested"})
}

// ApproveRetirement POST /api/retirement/:id/approve (CEO)
func (h *TransitionHandler) ApproveRetirement(c *gin.Context) {
	user, err := h.svc.ApproveRetirement(c.Request.Context(), c.Param("id"), GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"user": user, "message": "retirement approved"})
}

// RejectRetirement POST /api/retirement/:id/reject (CEO)
func (h *TransitionHandler) RejectRetirement(c *gin.Context) {
	user, err := h.svc.RejectRetirement(c.Request.Context(), c.Param("id"), GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"user": user, "message": "retirement rejected"})
}

// PendingHandovers GET /api/handovers/pending (admin)
func (h *TransitionHandler) PendingHandovers(c *gin.Context) {
	users, err := h.svc.PendingHandovers(c.Request.Context(), GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": users})
}

// PendingRetirements GET /api/retirement/pending (CEO)
func (h *TransitionHandler) PendingRetirements(c *gin.Context) {
	users, err := h.svc.PendingRetirements(c.Request.Context(), GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": users})
}
