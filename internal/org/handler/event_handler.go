package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oticonnect/backend/internal/org/entity"
	"github.com/oticonnect/backend/internal/org/service"
)

// EventHandler event and calendar endpoints
type EventHandler struct {
	svc *service.EventService
}

func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// List GET /api/events
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.svc.List(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": events})
}

// Get GET /api/events/:id
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, event)
}

// Create POST /api/events
func (h *EventHandler) Create(c *gin.Context) {
	var req service.CreateEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	event, err := h.svc.Create(c.Request.Context(), req, GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Created(c, event)
}

// Update PUT /api/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	var req service.UpdateEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	event, err := h.svc.Update(c.Request.Context(), c.Param("id"), req, GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, event)
}

// Approve POST /api/events/:id/approve
func (h *EventHandler) Approve(c *gin.Context) {
	h.setStatus(c, entity.EventStatusApproved)
}

// Reject POST /api/events/:id/reject
func (h *EventHandler) Reject(c *gin.Context) {
	h.setStatus(c, entity.EventStatusRejected)
}

// Cancel POST /api/events/:id/cancel
func (h *EventHandler) Cancel(c *gin.Context) {
	h.setStatus(c, entity.EventStatusCancelled)
}

func (h *EventHandler) setStatus(c *gin.Context, status string) {
	event, err := h.svc.SetStatus(c.Request.Context(), c.Param("id"), status, GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"event": event, "message": "event " + status})
}

type completeEventReq struct {
	Notes string `json:"notes"`
}

// Complete POST /api/events/:id/complete
func (h *EventHandler) Complete(c *gin.Context) {
	var req completeEventReq
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	event, err := h.svc.Complete(c.Request.Context(), c.Param("id"), req.Notes, GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"event": event, "message": "event completed"})
}

// Delete DELETE /api/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), GetActor(c)); err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"message": "event deleted"})
}

// Calendar endpoints

// OrganizationCalendar GET /api/calendar
func (h *EventHandler) OrganizationCalendar(c *gin.Context) {
	events, err := h.svc.OrganizationCalendar(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": events})
}

// DivisionCalendar GET /api/calendar/division/:id
func (h *EventHandler) DivisionCalendar(c *gin.Context) {
	events, err := h.svc.DivisionCalendar(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": events})
}

// MyCalendar GET /api/calendar/me
func (h *EventHandler) MyCalendar(c *gin.Context) {
	events, err := h.svc.UserCalendar(c.Request.Context(), GetUserID(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": events})
}

// CalendarRange GET /api/calendar/range?start_date=...&end_date=...
func (h *EventHandler) CalendarRange(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start_date"))
	if err != nil {
		BadRequest(c, "invalid start_date: expected RFC3339")
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end_date"))
	if err != nil {
		BadRequest(c, "invalid end_date: expected RFC3339")
		return
	}

	events, err := h.svc.CalendarRange(c.Request.Context(), start, end)
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": events})
}

// MandatoryCalendar GET /api/calendar/mandatory
func (h *EventHandler) MandatoryCalendar(c *gin.Context) {
	events, err := h.svc.MandatoryCalendar(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": events})
}
