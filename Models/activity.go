package Models

import (
	"time"

	"gorm.io/datatypes"
)

// Action is the closed set of things an activity event can describe.
type Action string

const (
	ActionTaskCreated       Action = "task_created"
	ActionTaskUpdated       Action = "task_updated"
	ActionTaskStatusChanged Action = "task_status_changed"
	ActionTaskDeleted       Action = "task_deleted"
	ActionProjectCreated    Action = "project_created"
	ActionMemberInvited     Action = "member_invited"
	ActionMemberRemoved     Action = "member_removed"
	ActionTyping            Action = "typing"
	ActionSessionStart      Action = "session_start"
	ActionSessionEnd        Action = "session_end"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionTaskCreated, ActionTaskUpdated, ActionTaskStatusChanged, ActionTaskDeleted,
		ActionProjectCreated, ActionMemberInvited, ActionMemberRemoved,
		ActionTyping, ActionSessionStart, ActionSessionEnd:
		return true
	}
	return false
}

// IsSpecial reports whether the action drives counters or sessions instead
// of being written to the event log.
func (a Action) IsSpecial() bool {
	return a == ActionTyping || a == ActionSessionStart || a == ActionSessionEnd
}

// ActivityLog is one immutable event of the project log.
type ActivityLog struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	UserID      uint              `json:"-" gorm:"not null;index:idx_activity_user_project"`
	User        User              `json:"user" gorm:"foreignKey:UserID;references:ID"`
	ProjectID   uint              `json:"project" gorm:"not null;index:idx_activity_user_project;index"`
	TaskID      *uint             `json:"-" gorm:"index"`
	Task        *Task             `json:"task,omitempty" gorm:"foreignKey:TaskID"`
	Action      Action            `json:"action" gorm:"type:varchar(32);not null"`
	Description string            `json:"description" gorm:"type:text;not null"`
	Metadata    datatypes.JSONMap `json:"metadata"`
	Timestamp   time.Time         `json:"timestamp" gorm:"not null;index"`
}

// UserActivity holds the per user, project and calendar day counters.
// Rows are only ever changed through upsert-increment.
type UserActivity struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user" gorm:"not null;uniqueIndex:idx_user_activity_day"`
	ProjectID      uint      `json:"project" gorm:"not null;uniqueIndex:idx_user_activity_day;index"`
	Date           string    `json:"date" gorm:"type:varchar(10);not null;uniqueIndex:idx_user_activity_day"`
	TotalTime      int64     `json:"totalTime" gorm:"not null;default:0"`
	TypingCount    int64     `json:"typingCount" gorm:"not null;default:0"`
	CompletedTasks int64     `json:"completedTasks" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ActivitySession is one tracked open/close interval. Date links it to the
// UserActivity row its elapsed time is added to.
type ActivitySession struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UserID       uint       `json:"user" gorm:"not null;index:idx_session_owner"`
	ProjectID    uint       `json:"project" gorm:"not null;index:idx_session_owner"`
	Date         string     `json:"date" gorm:"type:varchar(10);not null"`
	SessionStart time.Time  `json:"sessionStart" gorm:"not null;index"`
	SessionEnd   *time.Time `json:"sessionEnd,omitempty"`
	TotalTime    int64      `json:"totalTime" gorm:"not null;default:0"`
}
