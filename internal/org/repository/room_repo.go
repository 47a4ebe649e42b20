package repository

import (
	"context"
	"errors"

	"github.com/oticonnect/backend/internal/org/entity"
	"gorm.io/gorm"
)

// RoomRepository room store
type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// FindAll lists rooms
func (r *RoomRepository) FindAll(ctx context.Context) ([]entity.Room, error) {
	var rooms []entity.Room
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rooms).Error
	return rooms, err
}

// FindByID loads a room
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*entity.Room, error) {
	var room entity.Room
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

// Create inserts a room
func (r *RoomRepository) Create(ctx context.Context, room *entity.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// Update saves a room
func (r *RoomRepository) Update(ctx context.Context, room *entity.Room) error {
	return r.db.WithContext(ctx).Save(room).Error
}
