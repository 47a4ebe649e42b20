package entity

import (
	"time"
)

// Progress report status constants
const (
	ReportStatusPlanned   = "planned"
	ReportStatusOngoing   = "ongoing"
	ReportStatusCompleted = "completed"
)

// DivisionProgressReport a progress submission from a division head
type DivisionProgressReport struct {
	ID                 string    `json:"id" gorm:"primaryKey;size:36"`
	DivisionID         string    `json:"division_id" gorm:"size:36;not null;index"`
	ReportType         string    `json:"report_type,omitempty" gorm:"size:32"`
	Content            string    `json:"content,omitempty" gorm:"type:text"`
	Status             string    `json:"status" gorm:"size:16;not null;default:planned"`
	ProgressPercentage int       `json:"progress_percentage" gorm:"not null;default:0"`
	CreatedBy          string    `json:"created_by" gorm:"size:36;not null"`
	DivisionRole       string    `json:"division_role,omitempty" gorm:"size:32"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Division *Division `json:"division,omitempty" gorm:"foreignKey:DivisionID"`
	Author   *User     `json:"author,omitempty" gorm:"foreignKey:CreatedBy"`
}

func (DivisionProgressReport) TableName() string {
	return "division_progress_reports"
}
