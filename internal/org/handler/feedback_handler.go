package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/oticonnect/backend/internal/org/service"
)

// FeedbackHandler anonymous feedback endpoints (Oti Bersuara)
type FeedbackHandler struct {
	svc *service.FeedbackService
}

func NewFeedbackHandler(svc *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

// Create POST /api/feedback — public, unauthenticated
func (h *FeedbackHandler) Create(c *gin.Context) {
	var req service.CreateFeedbackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	feedback, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		WriteError(c, err)
		return
	}
	Created(c, gin.H{"feedback": feedback, "message": "feedback submitted"})
}

// List GET /api/feedback?status=...&category=... (admin)
func (h *FeedbackHandler) List(c *gin.Context) {
	entries, err := h.svc.List(c.Request.Context(), c.Query("status"), c.Query("category"), GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": entries})
}

// Get GET /api/feedback/:id (admin)
func (h *FeedbackHandler) Get(c *gin.Context) {
	feedback, err := h.svc.Get(c.Request.Context(), c.Param("id"), GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, feedback)
}

type feedbackStatusReq struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus PUT /api/feedback/:id/status (admin)
func (h *FeedbackHandler) UpdateStatus(c *gin.Context) {
	var req feedbackStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	feedback, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"feedback": feedback, "message": "status updated"})
}

type feedbackRespondReq struct {
	Response string `json:"response" binding:"required"`
}

// Respond POST /api/feedback/:id/respond (admin)
func (h *FeedbackHandler) Respond(c *gin.Context) {
	var req feedbackRespondReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	feedback, err := h.svc.Respond(c.Request.Context(), c.Param("id"), req.Response, GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"feedback": feedback, "message": "response recorded"})
}

// Delete DELETE /api/feedback/:id (admin)
func (h *FeedbackHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), GetActor(c)); err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"message": "feedback deleted"})
}
