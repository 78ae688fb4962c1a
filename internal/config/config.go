package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ListenAddr  string        `env:"LISTEN_ADDR" envDefault:":8000"`
	PostgresDSN string        `env:"POSTGRES_DSN"`
	JWTSecret   string        `env:"JWT_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"72h"`
	Timezone    string        `env:"TIMEZONE"`

	GoogleCredentialsFile  string `env:"GOOGLE_CREDENTIALS_FILE"`
	GoogleClientID         string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret     string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL      string `env:"GOOGLE_REDIRECT_URL" envDefault:"http://localhost:8000/auth/google/callback"`
	GoogleCalendarMirror   bool   `env:"GOOGLE_CALENDAR_MIRROR" envDefault:"false"`
	GoogleCalendarEndpoint string `env:"GOOGLE_CALENDAR_ENDPOINT"`
	// GoogleSimulateSignIn lets /auth/google log into a shared development
	// account when no OAuth client is configured.
	GoogleSimulateSignIn   bool   `env:"GOOGLE_SIMULATE_SIGNIN" envDefault:"false"`

	NotifySchedule  string `env:"NOTIFY_SCHEDULE" envDefault:"@every 1m"`
	ReminderMinutes int    `env:"REMINDER_MINUTES" envDefault:"15"`
	SNSTopicARN     string `env:"SNS_TOPIC_ARN"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// APIURL and TokenFile are used by the command line client.
	APIURL    string `env:"SYNCALENDAR_API_URL" envDefault:"http://localhost:8000"`
	TokenFile string `env:"SYNCALENDAR_TOKEN_FILE"`
}

// MinJWTSecretLen is the shortest JWT_SECRET the server accepts.
const MinJWTSecretLen = 32

// New loads .env, if present, and parses the environment.
func New() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.ReminderMinutes < 0 {
		return nil, fmt.Errorf("REMINDER_MINUTES must not be negative, got %d", cfg.ReminderMinutes)
	}
	return cfg, nil
}

// ValidateServer checks the settings only the API server needs.
func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	if len(c.JWTSecret) < MinJWTSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes, got %d", MinJWTSecretLen, len(c.JWTSecret))
	}
	return nil
}

// Location resolves Timezone, falling back to the process-local zone.
func (c *Config) Location(log *logrus.Entry) *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.WithError(err).WithField("timezone", c.Timezone).Error("unknown timezone, using local time")
		return time.Local
	}
	return loc
}
