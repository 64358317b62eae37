package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != EnvLocal || cfg.Addr != ":8080" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.DeadlineDayMode != DayModeCalendar {
		t.Fatalf("expected calendar days by default, got %q", cfg.DeadlineDayMode)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Fatalf("expected 12h session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.SMTP.Enabled() {
		t.Fatal("expected smtp disabled without host")
	}
	if string(cfg.Secret()) == "" {
		t.Fatal("expected local fallback secret")
	}
}

func TestLoadReadsDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "LAW_OFFICE_DEADLINE_DAY_MODE=business\nLAW_OFFICE_SMTP_HOST=smtp.example.com\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("LAW_OFFICE_DEADLINE_DAY_MODE")
		os.Unsetenv("LAW_OFFICE_SMTP_HOST")
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DeadlineDayMode != DayModeBusiness || !cfg.SMTP.Enabled() {
		t.Fatalf("expected values from file, got %+v", cfg)
	}
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{name: "env", key: "LAW_OFFICE_ENV", val: "staging", want: "unknown env"},
		{name: "day mode", key: "LAW_OFFICE_DEADLINE_DAY_MODE", val: "lunar", want: "unknown deadline day mode"},
		{name: "invite mode", key: "LAW_OFFICE_INVITE_MODE", val: "pigeon", want: "unknown invite mode"},
		{name: "http invite without url", key: "LAW_OFFICE_INVITE_MODE", val: "http", want: "LAW_OFFICE_INVITE_URL"},
		{name: "bad duration", key: "LAW_OFFICE_SESSION_TTL", val: "soon", want: "parse env:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSecretRequiredOutsideLocal(t *testing.T) {
	t.Setenv("LAW_OFFICE_ENV", EnvProd)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected missing secret error")
	}
	t.Setenv("LAW_OFFICE_JWT_SECRET", "s3cret")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(cfg.Secret()) != "s3cret" {
		t.Fatalf("unexpected secret %q", cfg.Secret())
	}
}
