package entity

import (
	"time"
)

// Event status constants
const (
	EventStatusPending   = "pending"
	EventStatusApproved  = "approved"
	EventStatusRejected  = "rejected"
	EventStatusCompleted = "completed"
	EventStatusCancelled = "cancelled"
)

// Coordinator approval status constants
const (
	CoordinatorApprovalPending  = "pending"
	CoordinatorApprovalApproved = "approved"
	CoordinatorApprovalRejected = "rejected"
)

// Event approval levels: 0 = staff, 1 = sub_coordinator, 2 = coordinator, 3 = head_coordinator
const (
	ApprovalLevelStaff           = 0
	ApprovalLevelSubCoordinator  = 1
	ApprovalLevelCoordinator     = 2
	ApprovalLevelHeadCoordinator = 3
)

// Event entity
type Event struct {
	ID                        string     `json:"id" gorm:"primaryKey;size:36"`
	Title                     string     `json:"title" gorm:"size:200;not null"`
	Description               string     `json:"description,omitempty" gorm:"type:text"`
	Status                    string     `json:"status" gorm:"size:16;not null;default:pending"`
	CreatedBy                 string     `json:"created_by" gorm:"size:36;not null"`
	DivisionID                *string    `json:"division_id,omitempty" gorm:"size:36"`
	StartTime                 time.Time  `json:"start_time"`
	EndTime                   time.Time  `json:"end_time"`
	Location                  string     `json:"location,omitempty" gorm:"size:200"`
	IsMandatory               bool       `json:"is_mandatory" gorm:"not null;default:false"`
	Attendees                 StringList `json:"attendees,omitempty" gorm:"type:jsonb"`
	ApprovalLevel             int        `json:"approval_level" gorm:"not null;default:0"`
	CoordinatorApprovalStatus string     `json:"coordinator_approval_status" gorm:"size:16;not null;default:pending"`
	CompletedAt               *time.Time `json:"completed_at,omitempty"`
	CompletedBy               string     `json:"completed_by,omitempty" gorm:"size:36"`
	CompletionNotes           string     `json:"completion_notes,omitempty" gorm:"type:text"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`

	Creator  *User     `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
	Division *Division `json:"division,omitempty" gorm:"foreignKey:DivisionID"`
}

func (Event) TableName() string {
	return "events"
}
