package Tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"CoHub/Activity"
	"CoHub/Models"
)

// Board owns the kanban tasks of every project.
type Board struct {
	DB       *gorm.DB
	Activity *Activity.Aggregator
}

func NewBoard(db *gorm.DB, activity *Activity.Aggregator) *Board {
	return &Board{DB: db, Activity: activity}
}

type CreateTaskInput struct {
	ProjectID   uint              `json:"projectId" validate:"required"`
	Title       string            `json:"title" validate:"required,max=255"`
	Description string            `json:"description"`
	Assignees   []uint            `json:"assignees"`
	Status      Models.TaskStatus `json:"status"`
}

// UpdateTaskInput changes only the fields that are set.
type UpdateTaskInput struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	Assignees   *[]uint `json:"assignees"`
}

func withPeople(db *gorm.DB) *gorm.DB {
	return db.Preload("Assignees").Preload("Creator")
}

func (b *Board) Create(ctx context.Context, actorID uint, input CreateTaskInput) (*Models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if input.ProjectID == 0 {
		return nil, Models.Invalid("projectId", "projectId is required")
	}
	if title == "" {
		return nil, Models.Invalid("title", "title is required")
	}
	status := input.Status
	if status == "" {
		status = Models.StatusTodo
	}
	if !status.IsValid() {
		return nil, Models.ErrInvalidStatus
	}

	db := b.DB.WithContext(ctx)
	if err := db.Select("id").First(&Models.Project{}, input.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Models.NotFound("project")
		}
		return nil, Models.StoreFailure("create task", err)
	}
	assignees, err := b.loadUsers(ctx, input.Assignees)
	if err != nil {
		return nil, err
	}

	now := b.Activity.Clock.Current()
	task := Models.Task{
		ProjectID:   input.ProjectID,
		Title:       title,
		Description: input.Description,
		Assignees:   assignees,
		CreatedBy:   actorID,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Omit("Creator", "Assignees.*").Create(&task).Error; err != nil {
		return nil, Models.StoreFailure("create task", err)
	}

	b.Activity.Track(ctx, Activity.Event{
		UserID:      actorID,
		ProjectID:   task.ProjectID,
		TaskID:      &task.ID,
		Action:      Models.ActionTaskCreated,
		Description: fmt.Sprintf("created task %q", task.Title),
	})
	return b.Get(ctx, task.ID)
}

// List returns the tasks of a project, newest first.
func (b *Board) List(ctx context.Context, projectID uint) ([]Models.Task, error) {
	tasks := []Models.Task{}
	err := b.DB.WithContext(ctx).
		Scopes(withPeople).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, Models.StoreFailure("fetch tasks", err)
	}
	return tasks, nil
}

func (b *Board) Get(ctx context.Context, taskID uint) (*Models.Task, error) {
	var task Models.Task
	err := b.DB.WithContext(ctx).Scopes(withPeople).First(&task, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Models.NotFound("task")
	}
	if err != nil {
		return nil, Models.StoreFailure("fetch task", err)
	}
	return &task, nil
}

// ChangeStatus moves a task to status. Moving into done while the actor is
// an assignee adds one to the actor's completed counter for today in the
// same transaction. Moving out of done never takes it back.
func (b *Board) ChangeStatus(ctx context.Context, taskID uint, status Models.TaskStatus, actorID uint) (*Models.Task, error) {
	if !status.IsValid() {
		return nil, Models.ErrInvalidStatus
	}

	var task Models.Task
	var oldStatus Models.TaskStatus
	err := b.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Assignees").First(&task, taskID).Error; err != nil {
			return err
		}
		oldStatus = task.Status
		err := tx.Model(&Models.Task{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
			"status":     status,
			"updated_at": b.Activity.Clock.Current(),
		}).Error
		if err != nil {
			return err
		}
		if status == Models.StatusDone && task.HasAssignee(actorID) {
			return b.Activity.CountCompletion(tx, actorID, task.ProjectID)
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Models.NotFound("task")
	}
	if err != nil {
		return nil, Models.StoreFailure("update task status", err)
	}

	b.Activity.Track(ctx, Activity.Event{
		UserID:      actorID,
		ProjectID:   task.ProjectID,
		TaskID:      &task.ID,
		Action:      Models.ActionTaskStatusChanged,
		Description: fmt.Sprintf("moved %q from %s to %s", task.Title, oldStatus, status),
		Metadata: map[string]interface{}{
			"oldStatus": string(oldStatus),
			"newStatus": string(status),
		},
	})
	return b.Get(ctx, task.ID)
}

func (b *Board) Update(ctx context.Context, taskID, actorID uint, input UpdateTaskInput) (*Models.Task, error) {
	task, err := b.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{"updated_at": b.Activity.Clock.Current()}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, Models.Invalid("title", "title cannot be empty")
		}
		changes["title"] = title
		task.Title = title
	}
	if input.Description != nil {
		changes["description"] = *input.Description
	}
	var assignees []Models.User
	if input.Assignees != nil {
		if assignees, err = b.loadUsers(ctx, *input.Assignees); err != nil {
			return nil, err
		}
	}

	err = b.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Models.Task{}).Where("id = ?", task.ID).Updates(changes).Error; err != nil {
			return err
		}
		if input.Assignees == nil {
			return nil
		}
		return tx.Model(task).Omit("Assignees.*").Association("Assignees").Replace(assignees)
	})
	if err != nil {
		return nil, Models.StoreFailure("update task", err)
	}

	b.Activity.Track(ctx, Activity.Event{
		UserID:      actorID,
		ProjectID:   task.ProjectID,
		TaskID:      &task.ID,
		Action:      Models.ActionTaskUpdated,
		Description: fmt.Sprintf("updated task %q", task.Title),
	})
	return b.Get(ctx, task.ID)
}

// Delete soft-deletes a task. Events that mention it stay in the log.
func (b *Board) Delete(ctx context.Context, taskID, actorID uint) error {
	task, err := b.Get(ctx, taskID)
	if err != nil {
		return err
	}
	if err := b.DB.WithContext(ctx).Delete(&Models.Task{}, task.ID).Error; err != nil {
		return Models.StoreFailure("delete task", err)
	}

	b.Activity.Track(ctx, Activity.Event{
		UserID:      actorID,
		ProjectID:   task.ProjectID,
		TaskID:      &task.ID,
		Action:      Models.ActionTaskDeleted,
		Description: fmt.Sprintf("deleted task %q", task.Title),
	})
	return nil
}

// loadUsers resolves assignee ids, rejecting ids that name no user.
func (b *Board) loadUsers(ctx context.Context, ids []uint) ([]Models.User, error) {
	users := []Models.User{}
	unique := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	if len(unique) == 0 {
		return users, nil
	}
	if err := b.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, Models.StoreFailure("load assignees", err)
	}
	if len(users) != len(unique) {
		return nil, Models.Invalid("assignees", "assignees must be existing users")
	}
	return users, nil
}
