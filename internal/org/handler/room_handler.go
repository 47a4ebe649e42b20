package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/oticonnect/backend/internal/org/service"
)

// RoomHandler room and booking endpoints
type RoomHandler struct {
	svc *service.RoomService
}

func NewRoomHandler(svc *service.RoomService) *RoomHandler {
	return &RoomHandler{svc: svc}
}

// List GET /api/rooms
func (h *RoomHandler) List(c *gin.Context) {
	rooms, err := h.svc.ListRooms(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": rooms})
}

// Get GET /api/rooms/:id
func (h *RoomHandler) Get(c *gin.Context) {
	room, err := h.svc.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, room)
}

// Create POST /api/rooms (admin)
func (h *RoomHandler) Create(c *gin.Context) {
	var req service.RoomReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	room, err := h.svc.CreateRoom(c.Request.Context(), req, GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Created(c, room)
}

// Update PUT /api/rooms/:id (admin)
func (h *RoomHandler) Update(c *gin.Context) {
	var req service.UpdateRoomReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	room, err := h.svc.UpdateRoom(c.Request.Context(), c.Param("id"), req, GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, room)
}

// RoomBookings GET /api/rooms/:id/bookings
func (h *RoomHandler) RoomBookings(c *gin.Context) {
	bookings, err := h.svc.RoomBookings(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": bookings})
}

// ListBookings GET /api/bookings
func (h *RoomHandler) ListBookings(c *gin.Context) {
	bookings, err := h.svc.ListBookings(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": bookings})
}

// Book POST /api/bookings
func (h *RoomHandler) Book(c *gin.Context) {
	var req service.BookRoomReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	booking, err := h.svc.Book(c.Request.Context(), req, GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Created(c, booking)
}

// Approve POST /api/bookings/:id/approve
func (h *RoomHandler) Approve(c *gin.Context) {
	booking, err := h.svc.ApproveBooking(c.Request.Context(), c.Param("id"), GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"booking": booking, "message": "booking approved"})
}

// Reject POST /api/bookings/:id/reject
func (h *RoomHandler) Reject(c *gin.Context) {
	booking, err := h.svc.RejectBooking(c.Request.Context(), c.Param("id"), GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"booking": booking, "message": "booking rejected"})
}

// Cancel DELETE /api/bookings/:id
func (h *RoomHandler) Cancel(c *gin.Context) {
	if err := h.svc.CancelBooking(c.Request.Context(), c.Param("id"), GetActor(c)); err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"message": "booking cancelled"})
}
