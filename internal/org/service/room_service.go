package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oticonnect/backend/internal/org/entity"
	"github.com/oticonnect/backend/internal/org/repository"
	"github.com/oticonnect/backend/internal/org/sse"
	"github.com/oticonnect/backend/internal/org/workflow"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// bookingMachine room booking approval. Approval cascades room occupancy and
// re-checks the overlap invariant inside the caller's transaction, so the
// machine itself only guards permission, the pending precondition, and the
// approval stamps.
var bookingMachine = workflow.New[entity.RoomBooking](
	"booking",
	[]workflow.Status{
		entity.BookingStatusPending,
		entity.BookingStatusApproved,
		entity.BookingStatusRejected,
	},
	func(b *entity.RoomBooking) workflow.Status { return workflow.Status(b.Status) },
	func(b *entity.RoomBooking, s workflow.Status) { b.Status = string(s) },
).Rule(entity.BookingStatusApproved, workflow.Rule[entity.RoomBooking]{
	From:   []workflow.Status{entity.BookingStatusPending},
	Permit: permitBookingApprover,
	Apply: func(a workflow.Actor, b *entity.RoomBooking) {
		now := time.Now()
		b.ApprovedBy = a.ID
		b.ApprovedAt = &now
	},
}).Rule(entity.BookingStatusRejected, workflow.Rule[entity.RoomBooking]{
	From:   []workflow.Status{entity.BookingStatusPending},
	Permit: permitBookingApprover,
})

func permitBookingApprover(a workflow.Actor, _ *entity.RoomBooking) error {
	if !a.HasRole(entity.RoleAdmin, entity.RoleResourceManager) {
		return workflow.Denyf("only admin or resource manager can rule on bookings")
	}
	return nil
}

// RoomService room and booking operations
type RoomService struct {
	roomRepo    *repository.RoomRepository
	bookingRepo *repository.BookingRepository
	db          *gorm.DB
}

func NewRoomService(roomRepo *repository.RoomRepository, bookingRepo *repository.BookingRepository, db *gorm.DB) *RoomService {
	return &RoomService{roomRepo: roomRepo, bookingRepo: bookingRepo, db: db}
}

// ListRooms lists all rooms
func (s *RoomService) ListRooms(ctx context.Context) ([]entity.Room, error) {
	return s.roomRepo.FindAll(ctx)
}

// GetRoom loads one room
func (s *RoomService) GetRoom(ctx context.Context, id string) (*entity.Room, error) {
	return s.roomRepo.FindByID(ctx, id)
}

// RoomReq room creation parameters
type RoomReq struct {
	Name        string  `json:"name" binding:"required"`
	Capacity    int     `json:"capacity" binding:"required,min=1"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	DivisionID  *string `json:"division_id"`
}

// UpdateRoomReq partial room update; zero-valued fields are left unchanged
type UpdateRoomReq struct {
	Name        string  `json:"name"`
	Capacity    int     `json:"capacity"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	DivisionID  *string `json:"division_id"`
}

// CreateRoom admin only
func (s *RoomService) CreateRoom(ctx context.Context, req RoomReq, actor workflow.Actor) (*entity.Room, error) {
	if !actor.HasRole(entity.RoleAdmin) {
		return nil, workflow.Denyf("only admin can create rooms")
	}
	status := req.Status
	if status == "" {
		status = entity.RoomStatusAvailable
	}
	if !validRoomStatus(status) {
		return nil, workflow.Validatef("%q is not a valid room status", status)
	}

	room := &entity.Room{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Capacity:    req.Capacity,
		Description: req.Description,
		Status:      status,
		DivisionID:  req.DivisionID,
	}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	return room, nil
}

// UpdateRoom admin only
func (s *RoomService) UpdateRoom(ctx context.Context, id string, req UpdateRoomReq, actor workflow.Actor) (*entity.Room, error) {
	if !actor.HasRole(entity.RoleAdmin) {
		return nil, workflow.Denyf("only admin can update rooms")
	}
	room, err := s.roomRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		room.Name = req.Name
	}
	if req.Capacity > 0 {
		room.Capacity = req.Capacity
	}
	if req.Description != "" {
		room.Description = req.Description
	}
	if req.Status != "" {
		if !validRoomStatus(req.Status) {
			return nil, workflow.Validatef("%q is not a valid room status", req.Status)
		}
		room.Status = req.Status
	}
	if req.DivisionID != nil {
		room.DivisionID = req.DivisionID
	}

	if err := s.roomRepo.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("update room: %w", err)
	}
	return room, nil
}

func validRoomStatus(status string) bool {
	switch status {
	case entity.RoomStatusAvailable, entity.RoomStatusOccupied,
		entity.RoomStatusMaintenance, entity.RoomStatusUnavailable:
		return true
	}
	return false
}

// ListBookings lists all bookings
func (s *RoomService) ListBookings(ctx context.Context) ([]entity.RoomBooking, error) {
	return s.bookingRepo.FindAll(ctx)
}

// RoomBookings lists bookings of one room
func (s *RoomService) RoomBookings(ctx context.Context, roomID string) ([]entity.RoomBooking, error) {
	if _, err := s.roomRepo.FindByID(ctx, roomID); err != nil {
		return nil, err
	}
	return s.bookingRepo.FindByRoom(ctx, roomID)
}

// BookRoomReq booking parameters
type BookRoomReq struct {
	RoomID    string    `json:"room_id" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Purpose   string    `json:"purpose"`
}

// Book creates a pending booking. Admin, CEO and division heads may book.
// Creation already rejects an interval that intersects an approved booking;
// approval re-checks the same condition inside its transaction.
func (s *RoomService) Book(ctx context.Context, req BookRoomReq, actor workflow.Actor) (*entity.RoomBooking, error) {
	if !actor.HasRole(entity.RoleAdmin, entity.RoleCEO, entity.RoleHead) {
		return nil, workflow.Denyf("only admin, CEO or division heads can book rooms")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, workflow.Validatef("end_time must be after start_time")
	}

	room, err := s.roomRepo.FindByID(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if room.Status != entity.RoomStatusAvailable {
		return nil, workflow.Invalidf("room %q is %s", room.Name, room.Status)
	}

	overlap, err := s.bookingRepo.CountApprovedOverlap(ctx, req.RoomID, req.StartTime, req.EndTime, "")
	if err != nil {
		return nil, fmt.Errorf("check overlap: %w", err)
	}
	if overlap > 0 {
		return nil, workflow.Invalidf("room already has an approved booking in that interval")
	}

	booking := &entity.RoomBooking{
		ID:        uuid.New().String(),
		RoomID:    req.RoomID,
		BookedBy:  actor.ID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Purpose:   req.Purpose,
		Status:    entity.BookingStatusPending,
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	sse.PublishBookingUpdate(booking.ID, booking.RoomID, "created")
	return booking, nil
}

// ApproveBooking approves a pending booking. The transaction takes a FOR
// UPDATE lock on the room row before re-checking the overlap invariant, so
// two racing approvals over the same interval serialize on the room and the
// second one sees the first one's committed approval.
func (s *RoomService) ApproveBooking(ctx context.Context, id string, actor workflow.Actor) (*entity.RoomBooking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := bookingMachine.Transition(booking, entity.BookingStatusApproved, actor); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room entity.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&room, "id = ?", booking.RoomID).Error; err != nil {
			return fmt.Errorf("lock room: %w", err)
		}
		overlap, err := s.bookingRepo.CountApprovedOverlapTx(tx, booking.RoomID, booking.StartTime, booking.EndTime, booking.ID)
		if err != nil {
			return fmt.Errorf("check overlap: %w", err)
		}
		if overlap > 0 {
			return workflow.Invalidf("room already has an approved booking in that interval")
		}
		if err := tx.Save(booking).Error; err != nil {
			return fmt.Errorf("save booking: %w", err)
		}
		return tx.Model(&entity.Room{}).
			Where("id = ?", booking.RoomID).
			Update("status", entity.RoomStatusOccupied).Error
	})
	if err != nil {
		return nil, err
	}

	sse.PublishBookingUpdate(booking.ID, booking.RoomID, "approved")
	return booking, nil
}

// RejectBooking rejects a pending booking
func (s *RoomService) RejectBooking(ctx context.Context, id string, actor workflow.Actor) (*entity.RoomBooking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := bookingMachine.Transition(booking, entity.BookingStatusRejected, actor); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}

	sse.PublishBookingUpdate(booking.ID, booking.RoomID, "rejected")
	return booking, nil
}

// CancelBooking removes a booking. The booker can cancel their own; admin and
// CEO can cancel any. Cancelling an approved booking frees the room in the
// same transaction.
func (s *RoomService) CancelBooking(ctx context.Context, id string, actor workflow.Actor) error {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if booking.BookedBy != actor.ID && !actor.HasRole(entity.RoleAdmin, entity.RoleCEO) {
		return workflow.Denyf("only the booker, admin or CEO can cancel a booking")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if booking.Status == entity.BookingStatusApproved {
			if err := tx.Model(&entity.Room{}).
				Where("id = ?", booking.RoomID).
				Update("status", entity.RoomStatusAvailable).Error; err != nil {
				return fmt.Errorf("free room: %w", err)
			}
		}
		return tx.Where("id = ?", id).Delete(&entity.RoomBooking{}).Error
	})
	if err != nil {
		return err
	}

	sse.PublishBookingUpdate(booking.ID, booking.RoomID, "cancelled")
	return nil
}
