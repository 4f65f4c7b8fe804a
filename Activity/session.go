package Activity

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"CoHub/Models"
)

// SessionTracker opens and closes working sessions and credits their elapsed
// seconds to the day the session was opened.
type SessionTracker struct {
	DB    *gorm.DB
	Clock Clock
}

// Start opens a session and makes sure today's counter row exists.
func (s *SessionTracker) Start(ctx context.Context, userID, projectID uint) (*Models.ActivitySession, error) {
	now := s.Clock.Current()
	session := &Models.ActivitySession{
		UserID:       userID,
		ProjectID:    projectID,
		Date:         s.Clock.Day(now),
		SessionStart: now,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		return bump(tx, userID, projectID, session.Date, increments{}, now)
	})
	if err != nil {
		return nil, Models.StoreFailure("start session", err)
	}
	return session, nil
}

// End closes the most recently opened session of the user in the project.
// It returns nil without error when no session is open.
func (s *SessionTracker) End(ctx context.Context, userID, projectID uint) (*Models.ActivitySession, error) {
	var closed *Models.ActivitySession
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open Models.ActivitySession
		err := tx.Where("user_id = ? AND project_id = ? AND session_end IS NULL", userID, projectID).
			Order("session_start DESC").
			Order("id DESC").
			First(&open).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		ok, err := closeSession(tx, &open, s.Clock.Current())
		if err != nil || !ok {
			return err
		}
		closed = &open
		return nil
	})
	if err != nil {
		return nil, Models.StoreFailure("end session", err)
	}
	return closed, nil
}

// CloseStale closes every session left open for longer than maxAge and
// returns how many it closed.
func (s *SessionTracker) CloseStale(ctx context.Context, maxAge time.Duration) (int, error) {
	now := s.Clock.Current()
	cutoff := now.Add(-maxAge)

	var stale []Models.ActivitySession
	err := s.DB.WithContext(ctx).
		Where("session_end IS NULL AND session_start < ?", cutoff).
		Order("session_start ASC").
		Find(&stale).Error
	if err != nil {
		return 0, Models.StoreFailure("load open sessions", err)
	}

	closed := 0
	for i := range stale {
		var ok bool
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			ok, err = closeSession(tx, &stale[i], now)
			return err
		})
		if err != nil {
			return closed, Models.StoreFailure("close stale session", err)
		}
		if ok {
			closed++
		}
	}
	return closed, nil
}

// closeSession stamps the end of session and adds its elapsed whole seconds to
// the counter row of the session's day. A session someone else already closed
// is left alone and reported as false.
func closeSession(tx *gorm.DB, session *Models.ActivitySession, now time.Time) (bool, error) {
	elapsed := int64(now.Sub(session.SessionStart) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	res := tx.Model(&Models.ActivitySession{}).
		Where("id = ? AND session_end IS NULL", session.ID).
		Updates(map[string]interface{}{"session_end": now, "total_time": elapsed})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	session.SessionEnd = &now
	session.TotalTime = elapsed
	return true, bump(tx, session.UserID, session.ProjectID, session.Date, increments{Seconds: elapsed}, now)
}
