package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories repository collection
type Repositories struct {
	User     *UserRepository
	Division *DivisionRepository
	Event    *EventRepository
	Room     *RoomRepository
	Booking  *BookingRepository
	Feedback *FeedbackRepository
	Report   *ReportRepository
}

// NewRepositories creates the repository collection
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		Division: NewDivisionRepository(db),
		Event:    NewEventRepository(db),
		Room:     NewRoomRepository(db),
		Booking:  NewBookingRepository(db),
		Feedback: NewFeedbackRepository(db),
		Report:   NewReportRepository(db),
	}
}
