package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oticonnect/backend/internal/org/entity"
	"gorm.io/gorm"
)

// BookingRepository room booking store
type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// FindByID loads a booking with its room
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*entity.RoomBooking, error) {
	var booking entity.RoomBooking
	err := r.db.WithContext(ctx).
		Preload("Room").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// FindAll lists bookings with room, booker and approver
func (r *BookingRepository) FindAll(ctx context.Context) ([]entity.RoomBooking, error) {
	var bookings []entity.RoomBooking
	err := r.db.WithContext(ctx).
		Preload("Room").
		Preload("Booker").
		Preload("Approver").
		Order("start_time DESC").
		Find(&bookings).Error
	return bookings, err
}

// FindByRoom lists bookings of one room
func (r *BookingRepository) FindByRoom(ctx context.Context, roomID string) ([]entity.RoomBooking, error) {
	var bookings []entity.RoomBooking
	err := r.db.WithContext(ctx).
		Preload("Booker").
		Preload("Approver").
		Where("room_id = ?", roomID).
		Order("start_time DESC").
		Find(&bookings).Error
	return bookings, err
}

// CountApprovedOverlap counts approved bookings of the room intersecting
// [start, end), excluding the given booking id. Used both at creation and
// re-checked inside the approval transaction.
func (r *BookingRepository) CountApprovedOverlap(ctx context.Context, roomID string, start, end time.Time, excludeID string) (int64, error) {
	return countApprovedOverlap(r.db.WithContext(ctx), roomID, start, end, excludeID)
}

// CountApprovedOverlapTx same as CountApprovedOverlap but inside an open
// transaction.
func (r *BookingRepository) CountApprovedOverlapTx(tx *gorm.DB, roomID string, start, end time.Time, excludeID string) (int64, error) {
	return countApprovedOverlap(tx, roomID, start, end, excludeID)
}

func countApprovedOverlap(db *gorm.DB, roomID string, start, end time.Time, excludeID string) (int64, error) {
	var count int64
	query := db.Model(&entity.RoomBooking{}).
		Where("room_id = ? AND status = ?", roomID, entity.BookingStatusApproved).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count, err
}

// Create inserts a booking
func (r *BookingRepository) Create(ctx context.Context, booking *entity.RoomBooking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

// Update saves a booking
func (r *BookingRepository) Update(ctx context.Context, booking *entity.RoomBooking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

// Delete removes a booking
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.RoomBooking{}).Error
}
