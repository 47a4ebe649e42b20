package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/oticonnect/backend/internal/org/entity"
	"github.com/oticonnect/backend/internal/org/service"
)

// DivisionHandler division endpoints
type DivisionHandler struct {
	svc *service.DivisionService
}

func NewDivisionHandler(svc *service.DivisionService) *DivisionHandler {
	return &DivisionHandler{svc: svc}
}

// List GET /api/divisions
func (h *DivisionHandler) List(c *gin.Context) {
	divisions, err := h.svc.List(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": divisions})
}

// Get GET /api/divisions/:id
func (h *DivisionHandler) Get(c *gin.Context) {
	division, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, division)
}

// Create POST /api/divisions (admin)
func (h *DivisionHandler) Create(c *gin.Context) {
	var req service.CreateDivisionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	division, err := h.svc.Create(c.Request.Context(), req, GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Created(c, division)
}

// Update PUT /api/divisions/:id
func (h *DivisionHandler) Update(c *gin.Context) {
	var req service.UpdateDivisionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	division, err := h.svc.Update(c.Request.Context(), c.Param("id"), req, GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, division)
}

type confirmMemberReq struct {
	UserID string `json:"user_id" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// ConfirmMember POST /api/divisions/:id/members/confirm
func (h *DivisionHandler) ConfirmMember(c *gin.Context) {
	var req confirmMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.svc.ConfirmMember(c.Request.Context(), c.Param("id"), req.UserID, req.Status, GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"user": user, "message": "membership " + req.Status})
}

type updateTasksReq struct {
	// No required binding: an empty list is a legal wholesale replacement.
	Tasks entity.TaskList `json:"tasks"`
}

// UpdateTasks PUT /api/divisions/:id/tasks
func (h *DivisionHandler) UpdateTasks(c *gin.Context) {
	var req updateTasksReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	division, err := h.svc.UpdateTasks(c.Request.Context(), c.Param("id"), req.Tasks, GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"division": division, "message": "tasks updated"})
}
