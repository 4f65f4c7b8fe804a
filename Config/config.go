package Config

import (
	"fmt"
	"strings"
	"time"

	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"CoHub/email"
)

type Config struct {
	Port     string
	DBDriver string
	DBDSN    string

	JWTSecret    string
	TokenTTL     time.Duration
	SecureCookie bool
	CORSOrigins  string

	LogLevel  string
	LogFormat string

	Location *time.Location

	SessionMaxAge        time.Duration
	SessionSweepSchedule string

	SMTP email.Config

	SlackWebhookURL string
	SlackChannel    string
}

// Load reads .env (when present) and the environment.
func Load() (*Config, error) {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "cohub.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("SECURE_COOKIE", false)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("APP_TIMEZONE", "Local")
	v.SetDefault("SESSION_MAX_AGE", "12h")
	v.SetDefault("SESSION_SWEEP_SCHEDULE", "0 0 * * * *")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM_NAME", "Co-Hub")

	cfg := &Config{
		Port:                 v.GetString("PORT"),
		DBDriver:             v.GetString("DB_DRIVER"),
		DBDSN:                v.GetString("DB_DSN"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		TokenTTL:             v.GetDuration("TOKEN_TTL"),
		SecureCookie:         v.GetBool("SECURE_COOKIE"),
		CORSOrigins:          v.GetString("CORS_ORIGINS"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		LogFormat:            v.GetString("LOG_FORMAT"),
		SessionMaxAge:        v.GetDuration("SESSION_MAX_AGE"),
		SessionSweepSchedule: v.GetString("SESSION_SWEEP_SCHEDULE"),
		SMTP: email.Config{
			SMTPServer:   v.GetString("SMTP_SERVER"),
			SMTPPort:     v.GetInt("SMTP_PORT"),
			Username:     v.GetString("SMTP_USERNAME"),
			Password:     v.GetString("SMTP_PASSWORD"),
			FromEmail:    v.GetString("SMTP_FROM_EMAIL"),
			FromName:     v.GetString("SMTP_FROM_NAME"),
			TLSEnabled:   v.GetBool("SMTP_TLS"),
			SkipTLSCheck: v.GetBool("SMTP_SKIP_TLS_CHECK"),
		},
	}

	location, err := time.LoadLocation(v.GetString("APP_TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("load APP_TIMEZONE: %w", err)
	}
	cfg.Location = location

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive")
	}
	return nil
}
