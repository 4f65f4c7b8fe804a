package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"CoHub/Activity"
	"CoHub/Config"
	"CoHub/CronJobs"
	"CoHub/Dashboard"
	"CoHub/FiberConfig"
	"CoHub/Models"
	"CoHub/Projects"
	"CoHub/Slack"
	"CoHub/Tasks"
	"CoHub/email"
	"CoHub/logger"
	"CoHub/middleware"
)

func main() {
	cfg, err := Config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer zl.Sync()

	if err := Models.Connect(cfg.DBDriver, cfg.DBDSN); err != nil {
		zl.Fatal("connect database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	db := Models.DB

	aggregator := Activity.NewAggregator(db, zl, Activity.SystemClock(cfg.Location))

	var notifiers Projects.Notifiers
	if cfg.SMTP.Enabled() {
		notifiers = append(notifiers, email.NewMailer(cfg.SMTP))
	}
	if cfg.SlackWebhookURL != "" {
		notifiers = append(notifiers, Slack.NewNotifier(cfg.SlackWebhookURL, cfg.SlackChannel))
	}
	var notifier Projects.Notifier
	if len(notifiers) > 0 {
		notifier = notifiers
	}

	auth := middleware.NewAuthenticator(db, cfg.JWTSecret, cfg.TokenTTL)
	auth.Secure = cfg.SecureCookie

	services := &FiberConfig.Services{
		DB:       db,
		Log:      zl,
		Auth:     auth,
		Activity: aggregator,
		Projects: Projects.NewService(db, aggregator, notifier, zl),
		Board:    Tasks.NewBoard(db, aggregator),
		Reporter: Dashboard.NewReporter(db, aggregator),
	}

	sweeper := CronJobs.NewSessionSweeper(aggregator.Sessions, cfg.SessionMaxAge, cfg.SessionSweepSchedule, zl)
	if err := sweeper.Start(); err != nil {
		zl.Fatal("start session sweeper", zap.Error(err))
	}
	defer sweeper.Stop()

	app := FiberConfig.NewApp(services, cfg.CORSOrigins)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		zl.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			zl.Error("shutdown", zap.Error(err))
		}
	}()

	zl.Info("listening", zap.String("port", cfg.Port))
	if err := FiberConfig.FiberConfig(app, cfg.Port); err != nil {
		zl.Error("server stopped", zap.Error(err))
	}
}
