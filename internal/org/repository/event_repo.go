package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oticonnect/backend/internal/org/entity"
	"gorm.io/gorm"
)

// EventRepository event store
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// FindByID loads an event with creator and division
func (r *EventRepository) FindByID(ctx context.Context, id string) (*entity.Event, error) {
	var event entity.Event
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Division").
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// FindAll lists events, newest first
func (r *EventRepository) FindAll(ctx context.Context) ([]entity.Event, error) {
	var events []entity.Event
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Division").
		Order("start_time DESC").
		Find(&events).Error
	return events, err
}

// FindUpcomingApproved lists approved events starting after the given time
func (r *EventRepository) FindUpcomingApproved(ctx context.Context, after time.Time) ([]entity.Event, error) {
	var events []entity.Event
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Division").
		Where("status = ? AND start_time >= ?", entity.EventStatusApproved, after).
		Order("start_time ASC").
		Find(&events).Error
	return events, err
}

// FindUpcomingApprovedByDivision division calendar
func (r *EventRepository) FindUpcomingApprovedByDivision(ctx context.Context, divisionID string, after time.Time) ([]entity.Event, error) {
	var events []entity.Event
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Division").
		Where("division_id = ? AND status = ? AND start_time >= ?", divisionID, entity.EventStatusApproved, after).
		Order("start_time ASC").
		Find(&events).Error
	return events, err
}

// FindApprovedBetween calendar range query
func (r *EventRepository) FindApprovedBetween(ctx context.Context, start, end time.Time) ([]entity.Event, error) {
	var events []entity.Event
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Division").
		Where("status = ? AND start_time BETWEEN ? AND ?", entity.EventStatusApproved, start, end).
		Order("start_time ASC").
		Find(&events).Error
	return events, err
}

// FindUpcomingMandatory upcoming mandatory events
func (r *EventRepository) FindUpcomingMandatory(ctx context.Context, after time.Time) ([]entity.Event, error) {
	var events []entity.Event
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Division").
		Where("status = ? AND is_mandatory = ? AND start_time >= ?", entity.EventStatusApproved, true, after).
		Order("start_time ASC").
		Find(&events).Error
	return events, err
}

// FindUpcomingForUser events where the user is an attendee or that belong to
// one of the user's divisions
func (r *EventRepository) FindUpcomingForUser(ctx context.Context, user *entity.User, after time.Time) ([]entity.Event, error) {
	var events []entity.Event
	query := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Division").
		Where("status = ? AND start_time >= ?", entity.EventStatusApproved, after)

	cond := r.db.Where("attendees @> ?", `"`+user.ID+`"`)
	if user.MainDivisionID != nil {
		cond = cond.Or("division_id = ?", *user.MainDivisionID)
	}
	if user.ManagerialDivisionID != nil {
		cond = cond.Or("division_id = ?", *user.ManagerialDivisionID)
	}

	err := query.Where(cond).Order("start_time ASC").Find(&events).Error
	return events, err
}

// Create inserts an event
func (r *EventRepository) Create(ctx context.Context, event *entity.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// Update saves an event
func (r *EventRepository) Update(ctx context.Context, event *entity.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// Delete removes an event
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Event{}).Error
}
