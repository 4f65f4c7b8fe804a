package Dashboard

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"CoHub/Activity"
	"CoHub/Models"
)

var now = time.Date(2024, 6, 5, 15, 0, 0, 0, time.UTC)

type world struct {
	db       *gorm.DB
	reporter *Reporter
	project  Models.Project
	alice    Models.User
	bob      Models.User
}

func day(d, hour int) time.Time {
	return time.Date(2024, 6, d, hour, 0, 0, 0, time.UTC)
}

// newWorld seeds a project created on June 1st with ten tasks: three done
// (on the 2nd, 3rd and 5th), four in progress and three to do.
func newWorld(t *testing.T) *world {
	t.Helper()
	db, err := Models.OpenMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	clock := Activity.Clock{Now: func() time.Time { return now }, Location: time.UTC}
	w := &world{
		db:       db,
		reporter: NewReporter(db, Activity.NewAggregator(db, nil, clock)),
		alice:    Models.User{UserID: "alice", Name: "Alice", Password: []byte("x")},
		bob:      Models.User{UserID: "bob", Name: "Bob", Password: []byte("x")},
	}
	require.NoError(t, db.Create(&w.alice).Error)
	require.NoError(t, db.Create(&w.bob).Error)

	w.project = Models.Project{Name: "Apollo", Description: "moon", CreatedBy: w.alice.ID, CreatedAt: day(1, 9)}
	require.NoError(t, db.Create(&w.project).Error)
	require.NoError(t, db.Create(&Models.ProjectMember{ProjectID: w.project.ID, UserID: w.alice.ID, Role: Models.RoleAdmin}).Error)
	require.NoError(t, db.Create(&Models.ProjectMember{ProjectID: w.project.ID, UserID: w.bob.ID, Role: Models.RoleMember}).Error)

	type seed struct {
		status    Models.TaskStatus
		updated   time.Time
		assignees []Models.User
	}
	seeds := []seed{
		{Models.StatusDone, day(2, 10), []Models.User{w.alice}},
		{Models.StatusDone, day(3, 23), []Models.User{w.alice, w.bob}},
		{Models.StatusDone, day(5, 11), []Models.User{w.bob}},
		{Models.StatusInProgress, day(4, 9), []Models.User{w.alice}},
		{Models.StatusInProgress, day(4, 9), []Models.User{w.alice}},
		{Models.StatusInProgress, day(4, 9), nil},
		{Models.StatusInProgress, day(4, 9), []Models.User{w.bob}},
		{Models.StatusTodo, day(1, 12), nil},
		{Models.StatusTodo, day(1, 12), []Models.User{w.bob}},
		{Models.StatusTodo, day(1, 12), nil},
	}
	for i, s := range seeds {
		task := Models.Task{
			ProjectID: w.project.ID,
			Title:     fmt.Sprintf("task %d", i),
			Status:    s.status,
			CreatedBy: w.alice.ID,
			Assignees: s.assignees,
			CreatedAt: day(1, 12),
			UpdatedAt: s.updated,
		}
		require.NoError(t, db.Omit("Creator", "Assignees.*").Create(&task).Error)
	}
	return w
}

func TestProjectDashboardTaskStats(t *testing.T) {
	w := newWorld(t)

	d, err := w.reporter.BuildProjectDashboard(context.Background(), w.project.ID)
	require.NoError(t, err)

	assert.Equal(t, TaskStats{Total: 10, Todo: 3, InProgress: 4, Done: 3}, d.TaskStats)
	assert.Equal(t, "Apollo", d.Project.Name)
}

func TestProjectDashboardProgress(t *testing.T) {
	w := newWorld(t)

	d, err := w.reporter.BuildProjectDashboard(context.Background(), w.project.ID)
	require.NoError(t, err)

	require.Len(t, d.ProgressData, 5)
	want := []ProgressPoint{
		{Date: "2024-06-01", Completed: 0, Total: 10},
		{Date: "2024-06-02", Completed: 1, Total: 10},
		{Date: "2024-06-03", Completed: 2, Total: 10},
		{Date: "2024-06-04", Completed: 2, Total: 10},
		{Date: "2024-06-05", Completed: 3, Total: 10},
	}
	assert.Equal(t, want, d.ProgressData)
	for i := 1; i < len(d.ProgressData); i++ {
		assert.GreaterOrEqual(t, d.ProgressData[i].Completed, d.ProgressData[i-1].Completed)
	}
}

func TestProjectDashboardMemberStats(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	agg := w.reporter.Activity

	require.NoError(t, w.db.Create(&Models.UserActivity{
		UserID: w.alice.ID, ProjectID: w.project.ID, Date: "2024-06-02", TotalTime: 125, TypingCount: 10, CompletedTasks: 4,
	}).Error)
	require.NoError(t, w.db.Create(&Models.UserActivity{
		UserID: w.alice.ID, ProjectID: w.project.ID, Date: "2024-06-03", TotalTime: 60, TypingCount: 5,
	}).Error)
	for i := 0; i < 25; i++ {
		require.NoError(t, agg.RecordEvent(ctx, Activity.Event{
			UserID: w.alice.ID, ProjectID: w.project.ID, Action: Models.ActionTaskUpdated,
		}))
	}

	d, err := w.reporter.BuildProjectDashboard(ctx, w.project.ID)
	require.NoError(t, err)

	require.Len(t, d.MemberStats, 2)
	alice, bob := d.MemberStats[0], d.MemberStats[1]
	assert.Equal(t, "alice", alice.User.UserID)
	assert.Equal(t, Models.RoleAdmin, alice.Role)
	assert.Equal(t, int64(2), alice.CompletedTasks, "live recount, not the daily counter")
	assert.Equal(t, int64(3), alice.TotalTime)
	assert.Equal(t, int64(15), alice.TotalTyping)
	assert.Equal(t, int64(25), alice.ActivityCount)

	assert.Equal(t, "bob", bob.User.UserID)
	assert.Equal(t, int64(2), bob.CompletedTasks)
	assert.Zero(t, bob.TotalTime)
	assert.Zero(t, bob.ActivityCount)

	assert.Len(t, d.RecentActivities, RecentActivityLimit)
}

func TestProjectDashboardNotFound(t *testing.T) {
	w := newWorld(t)

	_, err := w.reporter.BuildProjectDashboard(context.Background(), 999)
	assert.ErrorIs(t, err, Models.ErrNotFound)
}

func TestUserStats(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	other := Models.Project{Name: "Other", CreatedBy: w.bob.ID}
	require.NoError(t, w.db.Create(&other).Error)
	require.NoError(t, w.db.Create(&Models.ProjectMember{ProjectID: other.ID, UserID: w.alice.ID, Role: Models.RoleMember}).Error)
	gone := Models.Project{Name: "Gone", CreatedBy: w.alice.ID}
	require.NoError(t, w.db.Create(&gone).Error)
	require.NoError(t, w.db.Create(&Models.ProjectMember{ProjectID: gone.ID, UserID: w.alice.ID, Role: Models.RoleAdmin}).Error)
	require.NoError(t, w.db.Delete(&gone).Error)

	require.NoError(t, w.db.Create(&Models.UserActivity{
		UserID: w.alice.ID, ProjectID: w.project.ID, Date: "2024-06-02", TotalTime: 600,
	}).Error)
	require.NoError(t, w.db.Create(&Models.UserActivity{
		UserID: w.alice.ID, ProjectID: other.ID, Date: "2024-06-02", TotalTime: 59,
	}).Error)

	stats, err := w.reporter.BuildUserStats(ctx, w.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, &UserStats{ProjectCount: 2, CompletedTasks: 2, InProgressTasks: 2, TotalTime: 10}, stats)

	empty, err := w.reporter.BuildUserStats(ctx, 999)
	require.NoError(t, err)
	assert.Equal(t, &UserStats{}, empty)
}

func TestWriteWorkbook(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	require.NoError(t, w.reporter.Activity.RecordEvent(ctx, Activity.Event{
		UserID: w.bob.ID, ProjectID: w.project.ID, Action: Models.ActionTaskCreated,
	}))
	d, err := w.reporter.BuildProjectDashboard(ctx, w.project.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(d, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SummarySheet, MembersSheet, ProgressSheet, ActivitySheet}, f.GetSheetList())

	members, err := f.GetRows(MembersSheet)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, "User ID", members[0][0])
	assert.Equal(t, []string{"alice", "Alice", "admin", "2", "0", "0", "0"}, members[1])

	progress, err := f.GetRows(ProgressSheet)
	require.NoError(t, err)
	assert.Len(t, progress, 6)

	activity, err := f.GetRows(ActivitySheet)
	require.NoError(t, err)
	require.Len(t, activity, 2)
	assert.Equal(t, "bob", activity[1][1])
	assert.Equal(t, "task_created", activity[1][2])
}
