package entity

import (
	"time"
)

// Room status constants
const (
	RoomStatusAvailable   = "available"
	RoomStatusOccupied    = "occupied"
	RoomStatusMaintenance = "maintenance"
	RoomStatusUnavailable = "unavailable"
)

// Booking status constants
const (
	BookingStatusPending  = "pending"
	BookingStatusApproved = "approved"
	BookingStatusRejected = "rejected"
)

// Room entity
type Room struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"size:128;not null"`
	Capacity    int       `json:"capacity" gorm:"not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Status      string    `json:"status" gorm:"size:16;not null;default:available"`
	DivisionID  *string   `json:"division_id,omitempty" gorm:"size:36"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Division *Division `json:"division,omitempty" gorm:"foreignKey:DivisionID"`
}

func (Room) TableName() string {
	return "rooms"
}

// RoomBooking entity. Overlap invariant: for one room, no two approved
// bookings may intersect on [start_time, end_time).
type RoomBooking struct {
	ID         string     `json:"id" gorm:"primaryKey;size:36"`
	RoomID     string     `json:"room_id" gorm:"size:36;not null;index"`
	BookedBy   string     `json:"booked_by" gorm:"size:36;not null"`
	StartTime  time.Time  `json:"start_time" gorm:"not null"`
	EndTime    time.Time  `json:"end_time" gorm:"not null"`
	Purpose    string     `json:"purpose,omitempty" gorm:"type:text"`
	Status     string     `json:"status" gorm:"size:16;not null;default:pending"`
	ApprovedBy string     `json:"approved_by,omitempty" gorm:"size:36"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Room     *Room `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	Booker   *User `json:"booker,omitempty" gorm:"foreignKey:BookedBy"`
	Approver *User `json:"approver,omitempty" gorm:"foreignKey:ApprovedBy"`
}

func (RoomBooking) TableName() string {
	return "room_bookings"
}
