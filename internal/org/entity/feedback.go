package entity

import (
	"time"
)

// Feedback status constants
const (
	FeedbackStatusUnread     = "unread"
	FeedbackStatusRead       = "read"
	FeedbackStatusInProgress = "in_progress"
	FeedbackStatusResolved   = "resolved"
)

// Feedback category constants
const (
	FeedbackCategoryGrievance  = "grievance"
	FeedbackCategorySuggestion = "suggestion"
	FeedbackCategoryComplaint  = "complaint"
	FeedbackCategoryOther      = "other"
)

// Feedback priority constants
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Feedback anonymous feedback entry (Oti Bersuara). Submission carries no
// author identity; only the triage side is attributed.
type Feedback struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	Message     string     `json:"message" gorm:"type:text;not null"`
	Category    string     `json:"category" gorm:"size:32;not null"`
	Status      string     `json:"status" gorm:"size:16;not null;default:unread"`
	Priority    string     `json:"priority" gorm:"size:16;not null;default:medium"`
	Response    string     `json:"response,omitempty" gorm:"type:text"`
	RespondedBy string     `json:"responded_by,omitempty" gorm:"size:36"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Responder *User `json:"responder,omitempty" gorm:"foreignKey:RespondedBy"`
}

func (Feedback) TableName() string {
	return "feedback"
}
