package Activity

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"CoHub/Models"
)

type increments struct {
	Typing    int64
	Completed int64
	Seconds   int64
}

// bump adds inc to the (user, project, day) counter row, inserting it when
// absent. The addition happens inside the store so concurrent writers never
// lose updates.
func bump(tx *gorm.DB, userID, projectID uint, day string, inc increments, now time.Time) error {
	row := &Models.UserActivity{
		UserID:         userID,
		ProjectID:      projectID,
		Date:           day,
		TypingCount:    inc.Typing,
		CompletedTasks: inc.Completed,
		TotalTime:      inc.Seconds,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "project_id"},
			{Name: "date"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"typing_count":    gorm.Expr("typing_count + ?", inc.Typing),
			"completed_tasks": gorm.Expr("completed_tasks + ?", inc.Completed),
			"total_time":      gorm.Expr("total_time + ?", inc.Seconds),
			"updated_at":      now,
		}),
	}).Create(row).Error
}

// Totals is the sum of a user's counter rows.
type Totals struct {
	TotalTime      int64 `json:"totalTime"`
	TypingCount    int64 `json:"typingCount"`
	CompletedTasks int64 `json:"completedTasks"`
}

// Totals sums the counter rows of userID, limited to projectID unless it is 0.
func (a *Aggregator) Totals(ctx context.Context, userID, projectID uint) (Totals, error) {
	var totals Totals
	query := a.DB.WithContext(ctx).Model(&Models.UserActivity{}).Where("user_id = ?", userID)
	if projectID != 0 {
		query = query.Where("project_id = ?", projectID)
	}
	err := query.Select(
		"COALESCE(SUM(total_time), 0) AS total_time, " +
			"COALESCE(SUM(typing_count), 0) AS typing_count, " +
			"COALESCE(SUM(completed_tasks), 0) AS completed_tasks",
	).Scan(&totals).Error
	if err != nil {
		return Totals{}, Models.StoreFailure("sum activity counters", err)
	}
	return totals, nil
}
