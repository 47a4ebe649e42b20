package entity

import (
	"database/sql/driver"
	"encoding/json"
	"math"
	"time"
)

// Division type constants
const (
	DivisionTypeMain       = "main"
	DivisionTypeManagerial = "managerial"
)

// Division status constants
const (
	DivisionActive   = "active"
	DivisionInactive = "inactive"
)

// Division task status constants
const (
	TaskNotStarted = "not_started"
	TaskInProgress = "in_progress"
	TaskFinished   = "finished"
)

// DivisionTask one entry of a division's work plan, stored as jsonb
type DivisionTask struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Deadline    time.Time `json:"deadline"`
	Status      string    `json:"status"`
}

// TaskList jsonb array of division tasks
type TaskList []DivisionTask

func (l TaskList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *TaskList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Progress returns the completion percentage of the task list.
// An empty list counts as 0, not a division-by-zero.
func (l TaskList) Progress() int {
	if len(l) == 0 {
		return 0
	}
	finished := 0
	for _, t := range l {
		if t.Status == TaskFinished {
			finished++
		}
	}
	return int(math.Round(float64(finished) / float64(len(l)) * 100))
}

// Division entity
type Division struct {
	ID               string    `json:"id" gorm:"primaryKey;size:36"`
	Name             string    `json:"name" gorm:"size:128;not null;uniqueIndex"`
	Type             string    `json:"type" gorm:"size:16;not null"`
	Description      string    `json:"description,omitempty" gorm:"type:text"`
	HeadID           string    `json:"head_id" gorm:"size:36;not null"`
	Status           string    `json:"status" gorm:"size:16;not null;default:active"`
	ParentDivisionID *string   `json:"parent_division_id,omitempty" gorm:"size:36"`
	Tasks            TaskList  `json:"tasks,omitempty" gorm:"type:jsonb"`
	Progress         int       `json:"progress" gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Head           *User      `json:"head,omitempty" gorm:"foreignKey:HeadID"`
	ParentDivision *Division  `json:"parent_division,omitempty" gorm:"foreignKey:ParentDivisionID"`
	ChildDivisions []Division `json:"child_divisions,omitempty" gorm:"foreignKey:ParentDivisionID"`
}

func (Division) TableName() string {
	return "divisions"
}
