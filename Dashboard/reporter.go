package Dashboard

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"CoHub/Activity"
	"CoHub/Models"
)

const RecentActivityLimit = 20

type ProjectSummary struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type TaskStats struct {
	Total      int64 `json:"total"`
	Todo       int64 `json:"todo"`
	InProgress int64 `json:"in_progress"`
	Done       int64 `json:"done"`
}

// MemberStats is one member's contribution to a project. CompletedTasks is
// a recount of the member's tasks that are done right now, not the daily
// completion counter. TotalTime is in minutes.
type MemberStats struct {
	User           Models.UserSummary `json:"user"`
	Role           Models.Role        `json:"role"`
	CompletedTasks int64              `json:"completedTasks"`
	TotalTime      int64              `json:"totalTime"`
	TotalTyping    int64              `json:"totalTyping"`
	ActivityCount  int64              `json:"activityCount"`
}

type ProgressPoint struct {
	Date      string `json:"date"`
	Completed int64  `json:"completed"`
	Total     int64  `json:"total"`
}

type ProjectDashboard struct {
	Project          ProjectSummary       `json:"project"`
	TaskStats        TaskStats            `json:"taskStats"`
	MemberStats      []MemberStats        `json:"memberStats"`
	RecentActivities []Models.ActivityLog `json:"recentActivities"`
	ProgressData     []ProgressPoint      `json:"progressData"`
}

// UserStats summarizes one user across all projects. TotalTime is in minutes.
type UserStats struct {
	ProjectCount    int64 `json:"projectCount"`
	CompletedTasks  int64 `json:"completedTasks"`
	InProgressTasks int64 `json:"inProgressTasks"`
	TotalTime       int64 `json:"totalTime"`
}

type Reporter struct {
	DB       *gorm.DB
	Activity *Activity.Aggregator
}

func NewReporter(db *gorm.DB, activity *Activity.Aggregator) *Reporter {
	return &Reporter{DB: db, Activity: activity}
}

func (r *Reporter) BuildProjectDashboard(ctx context.Context, projectID uint) (*ProjectDashboard, error) {
	var project Models.Project
	err := r.DB.WithContext(ctx).
		Preload("Members", Models.MembersInOrder).
		Preload("Members.User").
		First(&project, projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Models.NotFound("project")
	}
	if err != nil {
		return nil, Models.StoreFailure("fetch dashboard", err)
	}

	var tasks []Models.Task
	err = r.DB.WithContext(ctx).Preload("Assignees").Where("project_id = ?", projectID).Find(&tasks).Error
	if err != nil {
		return nil, Models.StoreFailure("fetch dashboard", err)
	}

	dashboard := &ProjectDashboard{
		Project: ProjectSummary{
			ID:          project.ID,
			Name:        project.Name,
			Description: project.Description,
			CreatedAt:   project.CreatedAt,
		},
		TaskStats:    countStatuses(tasks),
		MemberStats:  make([]MemberStats, len(project.Members)),
		ProgressData: r.progress(project.CreatedAt, tasks),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, member := range project.Members {
		i, member := i, member
		g.Go(func() error {
			totals, err := r.Activity.Totals(gctx, member.UserID, projectID)
			if err != nil {
				return err
			}
			events, err := r.Activity.CountEvents(gctx, member.UserID, projectID)
			if err != nil {
				return err
			}
			dashboard.MemberStats[i] = MemberStats{
				User:           member.User.Summary(),
				Role:           member.Role,
				CompletedTasks: completedBy(tasks, member.UserID),
				TotalTime:      totals.TotalTime / 60,
				TotalTyping:    totals.TypingCount,
				ActivityCount:  events,
			}
			return nil
		})
	}
	g.Go(func() error {
		recent, err := r.Activity.ListEvents(gctx, projectID, RecentActivityLimit)
		dashboard.RecentActivities = recent
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dashboard, nil
}

func (r *Reporter) BuildUserStats(ctx context.Context, userID uint) (*UserStats, error) {
	var stats UserStats
	db := r.DB.WithContext(ctx)

	err := db.Model(&Models.ProjectMember{}).
		Joins("JOIN projects ON projects.id = project_members.project_id AND projects.deleted_at IS NULL").
		Where("project_members.user_id = ?", userID).
		Distinct("project_members.project_id").
		Count(&stats.ProjectCount).Error
	if err != nil {
		return nil, Models.StoreFailure("fetch user stats", err)
	}

	counts := map[Models.TaskStatus]*int64{
		Models.StatusDone:       &stats.CompletedTasks,
		Models.StatusInProgress: &stats.InProgressTasks,
	}
	for status, dst := range counts {
		err := db.Model(&Models.Task{}).
			Scopes(Models.AssignedTo(userID)).
			Where("tasks.status = ?", status).
			Count(dst).Error
		if err != nil {
			return nil, Models.StoreFailure("fetch user stats", err)
		}
	}

	totals, err := r.Activity.Totals(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	stats.TotalTime = totals.TotalTime / 60
	return &stats, nil
}

func countStatuses(tasks []Models.Task) TaskStats {
	stats := TaskStats{Total: int64(len(tasks))}
	for _, t := range tasks {
		switch t.Status {
		case Models.StatusTodo:
			stats.Todo++
		case Models.StatusInProgress:
			stats.InProgress++
		case Models.StatusDone:
			stats.Done++
		}
	}
	return stats
}

func completedBy(tasks []Models.Task, userID uint) int64 {
	var n int64
	for i := range tasks {
		if tasks[i].Status == Models.StatusDone && tasks[i].HasAssignee(userID) {
			n++
		}
	}
	return n
}

// progress builds one point per calendar day from the project's creation
// day through today. Each point recounts the current task set, so completed
// never decreases from one day to the next.
func (r *Reporter) progress(createdAt time.Time, tasks []Models.Task) []ProgressPoint {
	clock := r.Activity.Clock
	today := clock.StartOfDay(clock.Current())
	day := clock.StartOfDay(createdAt)
	if day.After(today) {
		day = today
	}

	points := []ProgressPoint{}
	for ; !day.After(today); day = day.AddDate(0, 0, 1) {
		end := clock.EndOfDay(day)
		var completed int64
		for i := range tasks {
			if tasks[i].Status == Models.StatusDone && !tasks[i].UpdatedAt.After(end) {
				completed++
			}
		}
		points = append(points, ProgressPoint{
			Date:      day.Format(Activity.DayLayout),
			Completed: completed,
			Total:     int64(len(tasks)),
		})
	}
	return points
}
