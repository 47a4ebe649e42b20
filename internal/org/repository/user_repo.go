package repository

import (
	"context"
	"errors"

	"github.com/oticonnect/backend/internal/org/entity"
	"gorm.io/gorm"
)

// UserRepository user store
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID loads a user with division associations
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Preload("MainDivision").
		Preload("ManagerialDivision").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail looks a user up by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByGoogleID looks a user up by their Google account id
func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindAll lists users with division associations
func (r *UserRepository) FindAll(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Preload("MainDivision").
		Preload("ManagerialDivision").
		Order("created_at DESC").
		Find(&users).Error
	return users, err
}

// FindPendingHandovers lists users with an initiated but unfinished handover
func (r *UserRepository) FindPendingHandovers(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Preload("MainDivision").
		Where("handover_completed = ? AND role_transition_date IS NOT NULL", false).
		Find(&users).Error
	return users, err
}

// FindPendingRetirements lists users with a pending retirement request
func (r *UserRepository) FindPendingRetirements(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Preload("MainDivision").
		Preload("ManagerialDivision").
		Where("retirement_status = ?", entity.RetirementStatusPending).
		Find(&users).Error
	return users, err
}

// CountByMainDivision counts confirmed members of a division
func (r *UserRepository) CountByMainDivision(ctx context.Context, divisionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("main_division_id = ?", divisionID).
		Count(&count).Error
	return count, err
}

// FindByMainDivision lists members of a division
func (r *UserRepository) FindByMainDivision(ctx context.Context, divisionID string) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("main_division_id = ?", divisionID).
		Find(&users).Error
	return users, err
}

// FindByManagerialDivision lists managerial members of a division
func (r *UserRepository) FindByManagerialDivision(ctx context.Context, divisionID string) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("managerial_division_id = ?", divisionID).
		Find(&users).Error
	return users, err
}

// Create inserts a user
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update saves a user
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}
