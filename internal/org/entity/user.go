package entity

import (
	"time"
)

// Role constants
const (
	RoleAdmin            = "admin"
	RoleCEO              = "ceo"
	RoleCFO              = "cfo"
	RoleHead             = "head"
	RoleMember           = "member"
	RoleRetired          = "retired"
	RoleResourceManager  = "resource_manager"
	RoleHumanDevelopment = "human_development"
	RoleInternalAffairs  = "internal_affairs"
)

// Division membership status constants
const (
	DivisionStatusPending   = "pending"
	DivisionStatusConfirmed = "confirmed"
	DivisionStatusRejected  = "rejected"
)

// Head approval status constants
const (
	HeadApprovalPending  = "pending"
	HeadApprovalApproved = "approved"
	HeadApprovalRejected = "rejected"
)

// Retirement status constants
const (
	RetirementStatusPending  = "pending"
	RetirementStatusApproved = "approved"
	RetirementStatusRejected = "rejected"
)

// User principal entity
type User struct {
	ID                    string     `json:"id" gorm:"primaryKey;size:36"`
	Email                 string     `json:"email" gorm:"size:128;not null;uniqueIndex"`
	Password              string     `json:"-" gorm:"size:128"` // empty for Google OAuth users
	Name                  string     `json:"name" gorm:"size:64;not null"`
	Role                  string     `json:"role" gorm:"size:32;not null;default:member"`
	PreviousRole          string     `json:"previous_role,omitempty" gorm:"size:32"`
	MainDivisionID        *string    `json:"main_division_id" gorm:"size:36"`
	ManagerialDivisionID  *string    `json:"managerial_division_id" gorm:"size:36"`
	DivisionStatus        string     `json:"division_status" gorm:"size:16;default:pending"`
	HeadApprovalStatus    string     `json:"head_approval_status" gorm:"size:16;default:pending"`
	RetirementStatus      string     `json:"retirement_status,omitempty" gorm:"size:16"`
	RetirementRequestedAt *time.Time `json:"retirement_requested_at,omitempty"`
	RetirementApprovedAt  *time.Time `json:"retirement_approved_at,omitempty"`
	RetirementApprovedBy  string     `json:"retirement_approved_by,omitempty" gorm:"size:36"`
	RoleTransitionDate    *time.Time `json:"role_transition_date,omitempty"`
	HandoverCompleted     bool       `json:"handover_completed" gorm:"not null;default:false"`
	GoogleID              string     `json:"google_id,omitempty" gorm:"size:64;index"`
	AvailableTimes        JSONB      `json:"available_times,omitempty" gorm:"type:jsonb"`
	EventRoles            JSONB      `json:"event_roles,omitempty" gorm:"type:jsonb"`
	ProfileCompleted      bool       `json:"profile_completed" gorm:"not null;default:false"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`

	MainDivision       *Division `json:"main_division,omitempty" gorm:"foreignKey:MainDivisionID"`
	ManagerialDivision *Division `json:"managerial_division,omitempty" gorm:"foreignKey:ManagerialDivisionID"`
}

func (User) TableName() string {
	return "users"
}

// BelongsTo reports whether the user is assigned to the given division,
// via either the main or the managerial membership.
func (u *User) BelongsTo(divisionID string) bool {
	if u.MainDivisionID != nil && *u.MainDivisionID == divisionID {
		return true
	}
	if u.ManagerialDivisionID != nil && *u.ManagerialDivisionID == divisionID {
		return true
	}
	return false
}
