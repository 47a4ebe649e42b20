package repository

import (
	"context"

	"github.com/oticonnect/backend/internal/org/entity"
	"gorm.io/gorm"
)

// ReportRepository division progress report store
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// FindAll lists progress report submissions, newest first
func (r *ReportRepository) FindAll(ctx context.Context) ([]entity.DivisionProgressReport, error) {
	var reports []entity.DivisionProgressReport
	err := r.db.WithContext(ctx).
		Preload("Division").
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}

// FindByDivision lists submissions of one division
func (r *ReportRepository) FindByDivision(ctx context.Context, divisionID string) ([]entity.DivisionProgressReport, error) {
	var reports []entity.DivisionProgressReport
	err := r.db.WithContext(ctx).
		Where("division_id = ?", divisionID).
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}

// Create inserts a submission
func (r *ReportRepository) Create(ctx context.Context, report *entity.DivisionProgressReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}
