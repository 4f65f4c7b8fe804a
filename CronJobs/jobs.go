package CronJobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"CoHub/logger"
)

// StaleSessionCloser closes sessions left open longer than maxAge.
type StaleSessionCloser interface {
	CloseStale(ctx context.Context, maxAge time.Duration) (int, error)
}

// SessionSweeper periodically closes sessions whose end signal never
// arrived, e.g. a browser tab that was killed.
type SessionSweeper struct {
	cronScheduler *cron.Cron
	sessions      StaleSessionCloser
	maxAge        time.Duration
	schedule      string
	log           *zap.Logger
	jobID         cron.EntryID
}

// NewSessionSweeper uses a six-field cron schedule, e.g. "0 0 * * * *" for hourly.
func NewSessionSweeper(sessions StaleSessionCloser, maxAge time.Duration, schedule string, log *zap.Logger) *SessionSweeper {
	return &SessionSweeper{
		cronScheduler: cron.New(cron.WithSeconds()),
		sessions:      sessions,
		maxAge:        maxAge,
		schedule:      schedule,
		log:           logger.OrNop(log),
	}
}

// Start schedules the sweep and starts the scheduler.
func (s *SessionSweeper) Start() error {
	var err error
	s.jobID, err = s.cronScheduler.AddFunc(s.schedule, func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("error scheduling session sweep: %w", err)
	}

	s.cronScheduler.Start()
	s.log.Info("session sweeper started",
		zap.String("schedule", s.schedule),
		zap.Duration("max_age", s.maxAge),
	)
	return nil
}

// Stop waits for a running sweep to finish.
func (s *SessionSweeper) Stop() {
	if s.cronScheduler == nil {
		return
	}
	<-s.cronScheduler.Stop().Done()
	s.log.Info("session sweeper stopped")
}

// RunOnce closes stale sessions now and returns how many were closed.
func (s *SessionSweeper) RunOnce(ctx context.Context) int {
	closed, err := s.sessions.CloseStale(ctx, s.maxAge)
	if err != nil {
		s.log.Error("session sweep failed", zap.Int("closed", closed), zap.Error(err))
		return closed
	}
	if closed > 0 {
		s.log.Info("closed stale sessions", zap.Int("closed", closed))
	}
	return closed
}
