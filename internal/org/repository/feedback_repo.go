package repository

import (
	"context"
	"errors"

	"github.com/oticonnect/backend/internal/org/entity"
	"gorm.io/gorm"
)

// FeedbackRepository anonymous feedback store
type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// FindByID loads one feedback entry
func (r *FeedbackRepository) FindByID(ctx context.Context, id string) (*entity.Feedback, error) {
	var feedback entity.Feedback
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&feedback).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &feedback, nil
}

// FindAll lists feedback, optionally filtered by status and category
func (r *FeedbackRepository) FindAll(ctx context.Context, status, category string) ([]entity.Feedback, error) {
	var items []entity.Feedback
	query := r.db.WithContext(ctx).Preload("Responder")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Order("created_at DESC").Find(&items).Error
	return items, err
}

// Create inserts a feedback entry
func (r *FeedbackRepository) Create(ctx context.Context, feedback *entity.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

// Update saves a feedback entry
func (r *FeedbackRepository) Update(ctx context.Context, feedback *entity.Feedback) error {
	return r.db.WithContext(ctx).Save(feedback).Error
}

// Delete removes a feedback entry
func (r *FeedbackRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Feedback{}).Error
}
