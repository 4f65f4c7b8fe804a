package Models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// IsValid validates the task status
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type Task struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	ProjectID   uint           `json:"project" gorm:"not null;index"`
	Title       string         `json:"title" gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text"`
	Assignees   []User         `json:"assignees" gorm:"many2many:task_assignees"`
	CreatedBy   uint           `json:"-" gorm:"not null"`
	Creator     User           `json:"createdBy" gorm:"foreignKey:CreatedBy"`
	Status      TaskStatus     `json:"status" gorm:"type:varchar(16);not null;default:todo;index"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// HasAssignee reports whether userID is among the task's assignees.
// Assignees must be loaded.
func (t *Task) HasAssignee(userID uint) bool {
	for _, u := range t.Assignees {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// AssignedTo restricts a task query to tasks whose assignees include userID.
func AssignedTo(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN task_assignees ON task_assignees.task_id = tasks.id").
			Where("task_assignees.user_id = ?", userID)
	}
}
