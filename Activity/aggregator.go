package Activity

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"CoHub/Models"
	"CoHub/logger"
)

const (
	DefaultEventLimit = 50
	MaxEventLimit     = 500
)

// Event is one activity occurrence as reported by a feature or the client.
type Event struct {
	UserID      uint
	ProjectID   uint
	TaskID      *uint
	Action      Models.Action
	Description string
	Metadata    map[string]interface{}
}

// Aggregator writes the project event log and keeps the daily counters.
type Aggregator struct {
	DB       *gorm.DB
	Log      *zap.Logger
	Clock    Clock
	Sessions *SessionTracker
}

func NewAggregator(db *gorm.DB, log *zap.Logger, clock Clock) *Aggregator {
	return &Aggregator{
		DB:       db,
		Log:      logger.OrNop(log),
		Clock:    clock,
		Sessions: &SessionTracker{DB: db, Clock: clock},
	}
}

// RecordEvent routes typing and session actions to the counters and writes
// every other action to the event log.
func (a *Aggregator) RecordEvent(ctx context.Context, ev Event) error {
	if ev.UserID == 0 {
		return Models.Invalid("user", "user is required")
	}
	if ev.ProjectID == 0 {
		return Models.Invalid("projectId", "projectId is required")
	}
	if !ev.Action.IsValid() {
		return Models.Invalid("action", fmt.Sprintf("unknown action %q", ev.Action))
	}

	if ev.Action.IsSpecial() {
		return a.recordSignal(ctx, ev)
	}

	if ev.TaskID != nil {
		if err := a.checkTask(ctx, *ev.TaskID, ev.ProjectID); err != nil {
			return err
		}
	}

	metadata := datatypes.JSONMap(ev.Metadata)
	if metadata == nil {
		metadata = datatypes.JSONMap{}
	}
	row := Models.ActivityLog{
		UserID:      ev.UserID,
		ProjectID:   ev.ProjectID,
		TaskID:      ev.TaskID,
		Action:      ev.Action,
		Description: describe(ev),
		Metadata:    metadata,
		Timestamp:   a.Clock.Current(),
	}
	if err := a.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return Models.StoreFailure("record activity", err)
	}
	return nil
}

// Track records ev and only logs a failure. Feature mutations call it after
// their own write has committed.
func (a *Aggregator) Track(ctx context.Context, ev Event) {
	if err := a.RecordEvent(ctx, ev); err != nil {
		a.Log.Warn("activity event not recorded",
			zap.String("action", string(ev.Action)),
			zap.Uint("user", ev.UserID),
			zap.Uint("project", ev.ProjectID),
			zap.Error(err),
		)
	}
}

// ListEvents returns the newest events of a project with actor and task loaded.
func (a *Aggregator) ListEvents(ctx context.Context, projectID uint, limit int) ([]Models.ActivityLog, error) {
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	if limit > MaxEventLimit {
		limit = MaxEventLimit
	}
	logs := []Models.ActivityLog{}
	err := a.DB.WithContext(ctx).
		Preload("User").
		Preload("Task").
		Where("project_id = ?", projectID).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, Models.StoreFailure("fetch activities", err)
	}
	return logs, nil
}

// CountEvents counts the logged events of userID, limited to projectID unless it is 0.
func (a *Aggregator) CountEvents(ctx context.Context, userID, projectID uint) (int64, error) {
	var count int64
	query := a.DB.WithContext(ctx).Model(&Models.ActivityLog{}).Where("user_id = ?", userID)
	if projectID != 0 {
		query = query.Where("project_id = ?", projectID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, Models.StoreFailure("count activities", err)
	}
	return count, nil
}

// CountCompletion adds one completed task to today's counter of the user.
// tx is the caller's transaction so the increment commits with the status change.
func (a *Aggregator) CountCompletion(tx *gorm.DB, userID, projectID uint) error {
	now := a.Clock.Current()
	return bump(tx, userID, projectID, a.Clock.Day(now), increments{Completed: 1}, now)
}

// recordSignal applies typing and session actions to the counters and sessions.
func (a *Aggregator) recordSignal(ctx context.Context, ev Event) error {
	switch ev.Action {
	case Models.ActionTyping:
		now := a.Clock.Current()
		inc := increments{Typing: typingCount(ev.Metadata)}
		if err := bump(a.DB.WithContext(ctx), ev.UserID, ev.ProjectID, a.Clock.Day(now), inc, now); err != nil {
			return Models.StoreFailure("update activity counters", err)
		}
		return nil
	case Models.ActionSessionStart:
		_, err := a.Sessions.Start(ctx, ev.UserID, ev.ProjectID)
		return err
	case Models.ActionSessionEnd:
		_, err := a.Sessions.End(ctx, ev.UserID, ev.ProjectID)
		return err
	}
	return nil
}

// checkTask rejects a task that is not part of projectID. Deleted tasks still
// count so their removal can be logged.
func (a *Aggregator) checkTask(ctx context.Context, taskID, projectID uint) error {
	var count int64
	err := a.DB.WithContext(ctx).Unscoped().Model(&Models.Task{}).
		Where("id = ? AND project_id = ?", taskID, projectID).
		Count(&count).Error
	if err != nil {
		return Models.StoreFailure("record activity", err)
	}
	if count == 0 {
		return Models.Invalid("taskId", "task does not belong to this project")
	}
	return nil
}

var actionText = map[Models.Action]string{
	Models.ActionTaskCreated:       "created a task",
	Models.ActionTaskUpdated:       "updated a task",
	Models.ActionTaskStatusChanged: "changed a task status",
	Models.ActionTaskDeleted:       "deleted a task",
	Models.ActionProjectCreated:    "created the project",
	Models.ActionMemberInvited:     "invited a member",
	Models.ActionMemberRemoved:     "removed a member",
}

func describe(ev Event) string {
	if ev.Description != "" {
		return ev.Description
	}
	return actionText[ev.Action]
}

// typingCount reads metadata["count"]; anything missing or below one counts once.
func typingCount(metadata map[string]interface{}) int64 {
	var n int64
	switch v := metadata["count"].(type) {
	case float64:
		n = int64(v)
	case float32:
		n = int64(v)
	case int:
		n = int64(v)
	case int64:
		n = v
	}
	if n < 1 {
		return 1
	}
	return n
}
