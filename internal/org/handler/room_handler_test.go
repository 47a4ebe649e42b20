package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oticonnect/backend/internal/org/entity"
	"github.com/oticonnect/backend/internal/org/repository"
	"github.com/oticonnect/backend/internal/org/service"
	"github.com/oticonnect/backend/internal/org/testutil"
	"gorm.io/gorm"
)

func setupRoomTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	svc := service.NewRoomService(repos.Room, repos.Booking, db)
	h := NewRoomHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api")

	api.GET("/rooms", h.List)
	api.POST("/rooms", h.Create)
	api.PUT("/rooms/:id", h.Update)
	api.GET("/rooms/:id/bookings", h.RoomBookings)
	api.POST("/bookings", h.Book)
	api.POST("/bookings/:id/approve", h.Approve)
	api.POST("/bookings/:id/reject", h.Reject)
	api.DELETE("/bookings/:id", h.Cancel)

	return router, db
}

func seedBooking(t *testing.T, db *gorm.DB, roomID, bookedBy, status string, start, end time.Time) *entity.RoomBooking {
	t.Helper()
	booking := &entity.RoomBooking{
		ID:        uuid.New().String(),
		RoomID:    roomID,
		BookedBy:  bookedBy,
		StartTime: start,
		EndTime:   end,
		Status:    status,
	}
	if err := db.Create(booking).Error; err != nil {
		t.Fatalf("Failed to seed booking: %v", err)
	}
	return booking
}

func TestApproveBookingRejectsOverlap(t *testing.T) {
	router, db := setupRoomTest(t)
	room := testutil.SeedRoom(t, db, "room-1", "Meeting Room A")

	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	// A holds [10:00, 11:00) approved; B wants [10:30, 11:30).
	seedBooking(t, db, room.ID, "user-a", entity.BookingStatusApproved,
		day.Add(10*time.Hour), day.Add(11*time.Hour))
	b := seedBooking(t, db, room.ID, "user-b", entity.BookingStatusPending,
		day.Add(10*time.Hour+30*time.Minute), day.Add(11*time.Hour+30*time.Minute))

	w := testutil.DoRequest(router, "POST", "/api/bookings/"+b.ID+"/approve", nil, testutil.AdminToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}

	var got entity.RoomBooking
	db.First(&got, "id = ?", b.ID)
	if got.Status != entity.BookingStatusPending {
		t.Errorf("status = %q, want pending after failed approval", got.Status)
	}
}

func TestApproveBookingAllowsAdjacentInterval(t *testing.T) {
	router, db := setupRoomTest(t)
	room := testutil.SeedRoom(t, db, "room-2", "Meeting Room B")

	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	// [10:00, 11:00) approved; [11:00, 12:00) touches but does not intersect.
	seedBooking(t, db, room.ID, "user-a", entity.BookingStatusApproved,
		day.Add(10*time.Hour), day.Add(11*time.Hour))
	b := seedBooking(t, db, room.ID, "user-b", entity.BookingStatusPending,
		day.Add(11*time.Hour), day.Add(12*time.Hour))

	w := testutil.DoRequest(router, "POST", "/api/bookings/"+b.ID+"/approve", nil, testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var got entity.RoomBooking
	db.First(&got, "id = ?", b.ID)
	if got.Status != entity.BookingStatusApproved {
		t.Errorf("status = %q, want approved", got.Status)
	}
	if got.ApprovedBy == "" || got.ApprovedAt == nil {
		t.Error("approval stamps missing")
	}

	// Approval cascades room occupancy.
	var gotRoom entity.Room
	db.First(&gotRoom, "id = ?", room.ID)
	if gotRoom.Status != entity.RoomStatusOccupied {
		t.Errorf("room status = %q, want occupied", gotRoom.Status)
	}
}

func TestApproveBookingSerializesOnRoom(t *testing.T) {
	router, db := setupRoomTest(t)
	room := testutil.SeedRoom(t, db, "room-5", "Meeting Room E")

	day := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	first := seedBooking(t, db, room.ID, "user-a", entity.BookingStatusPending,
		day.Add(9*time.Hour), day.Add(10*time.Hour))
	second := seedBooking(t, db, room.ID, "user-b", entity.BookingStatusPending,
		day.Add(9*time.Hour+30*time.Minute), day.Add(10*time.Hour+30*time.Minute))

	// Both bookings are pending when approvals begin; each approval locks the
	// room row, so the second overlap check observes the first approval.
	w := testutil.DoRequest(router, "POST", "/api/bookings/"+first.ID+"/approve", nil, testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Fatalf("first approval: status = %d: %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(router, "POST", "/api/bookings/"+second.ID+"/approve", nil, testutil.AdminToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second approval: status = %d, want 400: %s", w.Code, w.Body.String())
	}

	var approved int64
	db.Model(&entity.RoomBooking{}).
		Where("room_id = ? AND status = ?", room.ID, entity.BookingStatusApproved).
		Count(&approved)
	if approved != 1 {
		t.Errorf("approved bookings = %d, want exactly 1", approved)
	}
}

func TestApproveBookingRequiresApproverRole(t *testing.T) {
	router, db := setupRoomTest(t)
	room := testutil.SeedRoom(t, db, "room-3", "Meeting Room C")

	day := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	b := seedBooking(t, db, room.ID, "user-b", entity.BookingStatusPending,
		day.Add(9*time.Hour), day.Add(10*time.Hour))

	w := testutil.DoRequest(router, "POST", "/api/bookings/"+b.ID+"/approve", nil,
		testutil.MemberToken("user-member"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", w.Code, w.Body.String())
	}
}

func TestUpdateRoomAcceptsPartialBody(t *testing.T) {
	router, db := setupRoomTest(t)
	room := testutil.SeedRoom(t, db, "room-6", "Meeting Room F")

	// Status alone, without name or capacity, is a legal update.
	w := testutil.DoRequest(router, "PUT", "/api/rooms/"+room.ID, map[string]interface{}{
		"status": entity.RoomStatusMaintenance,
	}, testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var got entity.Room
	db.First(&got, "id = ?", room.ID)
	if got.Status != entity.RoomStatusMaintenance {
		t.Errorf("status = %q, want maintenance", got.Status)
	}
	if got.Name != room.Name || got.Capacity != room.Capacity {
		t.Error("untouched fields changed on partial update")
	}
}

func TestBookRejectsOverlapAtCreation(t *testing.T) {
	router, db := setupRoomTest(t)
	room := testutil.SeedRoom(t, db, "room-4", "Meeting Room D")

	day := time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)
	seedBooking(t, db, room.ID, "user-a", entity.BookingStatusApproved,
		day.Add(14*time.Hour), day.Add(15*time.Hour))

	w := testutil.DoRequest(router, "POST", "/api/bookings", map[string]interface{}{
		"room_id":    room.ID,
		"start_time": day.Add(14*time.Hour + 30*time.Minute).Format(time.RFC3339),
		"end_time":   day.Add(15*time.Hour + 30*time.Minute).Format(time.RFC3339),
		"purpose":    "standup",
	}, testutil.AdminToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestCancelApprovedBookingFreesRoom(t *testing.T) {
	router, db := setupRoomTest(t)
	room := testutil.SeedRoom(t, db, "room-5", "Meeting Room E")
	db.Model(&entity.Room{}).Where("id = ?", room.ID).
		Update("status", entity.RoomStatusOccupied)

	day := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)
	b := seedBooking(t, db, room.ID, "user-booker", entity.BookingStatusApproved,
		day.Add(13*time.Hour), day.Add(14*time.Hour))

	// The booker cancels their own approved booking.
	w := testutil.DoRequest(router, "DELETE", "/api/bookings/"+b.ID, nil,
		testutil.MemberToken("user-booker"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var gotRoom entity.Room
	db.First(&gotRoom, "id = ?", room.ID)
	if gotRoom.Status != entity.RoomStatusAvailable {
		t.Errorf("room status = %q, want available after cancel", gotRoom.Status)
	}

	var count int64
	db.Model(&entity.RoomBooking{}).Where("id = ?", b.ID).Count(&count)
	if count != 0 {
		t.Error("booking should be removed")
	}
}

func TestCancelDeniedForStranger(t *testing.T) {
	router, db := setupRoomTest(t)
	room := testutil.SeedRoom(t, db, "room-6", "Meeting Room F")

	day := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	b := seedBooking(t, db, room.ID, "user-booker", entity.BookingStatusPending,
		day.Add(13*time.Hour), day.Add(14*time.Hour))

	w := testutil.DoRequest(router, "DELETE", "/api/bookings/"+b.ID, nil,
		testutil.MemberToken("user-stranger"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", w.Code, w.Body.String())
	}
}
