package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const (
	DayModeCalendar = "calendar"
	DayModeBusiness = "business"
)

const (
	InviteModeLocal = "local"
	InviteModeHTTP  = "http"
)

type Config struct {
	Env    string `env:"LAW_OFFICE_ENV" envDefault:"local"`
	Addr   string `env:"LAW_OFFICE_ADDR" envDefault:":8080"`
	DBPath string `env:"LAW_OFFICE_DB_PATH" envDefault:"law-office.db"`

	// AppBaseURL is used to build the links sent in invite and recovery mails.
	AppBaseURL string `env:"LAW_OFFICE_APP_BASE_URL" envDefault:"http://localhost:8080"`

	JWTSecret   string        `env:"LAW_OFFICE_JWT_SECRET"`
	SessionTTL  time.Duration `env:"LAW_OFFICE_SESSION_TTL" envDefault:"12h"`
	InviteTTL   time.Duration `env:"LAW_OFFICE_INVITE_TTL" envDefault:"168h"`
	RecoveryTTL time.Duration `env:"LAW_OFFICE_RECOVERY_TTL" envDefault:"1h"`

	DeadlineDayMode string `env:"LAW_OFFICE_DEADLINE_DAY_MODE" envDefault:"calendar"`

	InviteMode    string        `env:"LAW_OFFICE_INVITE_MODE" envDefault:"local"`
	InviteURL     string        `env:"LAW_OFFICE_INVITE_URL"`
	InviteToken   string        `env:"LAW_OFFICE_INVITE_TOKEN"`
	InviteTimeout time.Duration `env:"LAW_OFFICE_INVITE_TIMEOUT" envDefault:"10s"`

	SMTP SMTPConfig

	OTelEndpoint string `env:"LAW_OFFICE_OTEL_ENDPOINT"`

	GoogleCredentialsFile string `env:"LAW_OFFICE_GOOGLE_CREDENTIALS_FILE"`
	GoogleCalendarID      string `env:"LAW_OFFICE_GOOGLE_CALENDAR_ID" envDefault:"primary"`
	GoogleTimeZone        string `env:"LAW_OFFICE_GOOGLE_TIMEZONE" envDefault:"America/Argentina/Buenos_Aires"`
}

type SMTPConfig struct {
	Host     string `env:"LAW_OFFICE_SMTP_HOST"`
	Port     int    `env:"LAW_OFFICE_SMTP_PORT" envDefault:"587"`
	Username string `env:"LAW_OFFICE_SMTP_USERNAME"`
	Password string `env:"LAW_OFFICE_SMTP_PASSWORD"`
	From     string `env:"LAW_OFFICE_SMTP_FROM" envDefault:"no-reply@localhost"`
}

func (s SMTPConfig) Enabled() bool {
	return strings.TrimSpace(s.Host) != ""
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}
	switch c.DeadlineDayMode {
	case DayModeCalendar, DayModeBusiness:
	default:
		return fmt.Errorf("unknown deadline day mode %q", c.DeadlineDayMode)
	}
	switch c.InviteMode {
	case InviteModeLocal:
	case InviteModeHTTP:
		if strings.TrimSpace(c.InviteURL) == "" {
			return errors.New("LAW_OFFICE_INVITE_URL is required when invite mode is http")
		}
	default:
		return fmt.Errorf("unknown invite mode %q", c.InviteMode)
	}
	if c.JWTSecret == "" && c.Env != EnvLocal {
		return errors.New("LAW_OFFICE_JWT_SECRET is required outside local")
	}
	return nil
}

// Secret falls back to a fixed development key in local env only.
func (c Config) Secret() []byte {
	if c.JWTSecret == "" {
		return []byte("law-office-local-secret")
	}
	return []byte(c.JWTSecret)
}
