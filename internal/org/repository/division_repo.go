package repository

import (
	"context"
	"errors"

	"github.com/oticonnect/backend/internal/org/entity"
	"gorm.io/gorm"
)

// DivisionRepository division store
type DivisionRepository struct {
	db *gorm.DB
}

func NewDivisionRepository(db *gorm.DB) *DivisionRepository {
	return &DivisionRepository{db: db}
}

// FindAll lists divisions with their heads
func (r *DivisionRepository) FindAll(ctx context.Context) ([]entity.Division, error) {
	var divisions []entity.Division
	err := r.db.WithContext(ctx).
		Preload("Head").
		Order("name ASC").
		Find(&divisions).Error
	return divisions, err
}

// FindByID loads a division with head and children
func (r *DivisionRepository) FindByID(ctx context.Context, id string) (*entity.Division, error) {
	var division entity.Division
	err := r.db.WithContext(ctx).
		Preload("Head").
		Preload("ChildDivisions").
		Where("id = ?", id).
		First(&division).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &division, nil
}

// Create inserts a division
func (r *DivisionRepository) Create(ctx context.Context, division *entity.Division) error {
	return r.db.WithContext(ctx).Create(division).Error
}

// Update saves a division
func (r *DivisionRepository) Update(ctx context.Context, division *entity.Division) error {
	return r.db.WithContext(ctx).Save(division).Error
}
