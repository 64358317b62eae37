package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TWRT/law-office/internal/auth"
	"github.com/TWRT/law-office/internal/logging"
	"github.com/TWRT/law-office/internal/mail"
	"github.com/TWRT/law-office/internal/models"
	"github.com/TWRT/law-office/internal/repository"
)

type countingMailer struct {
	sent []mail.Message
}

func (m *countingMailer) Send(_ context.Context, msg mail.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

func TestParseAdmins(t *testing.T) {
	admins, err := ParseAdmins([]byte(`
admins:
  - email: " Augusto@Example.com "
    name: Augusto Perez
  - email: estudio@example.com
    name: Estudio
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(admins) != 2 || admins[0].Email != "augusto@example.com" {
		t.Fatalf("unexpected admins %+v", admins)
	}

	for name, payload := range map[string]string{
		"empty":     "  ",
		"no admins": "admins: []",
		"no name":   "admins:\n  - email: a@example.com\n",
		"bad yaml":  "admins: [",
	} {
		if _, err := ParseAdmins([]byte(payload)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadAdminsMissingFile(t *testing.T) {
	if _, err := LoadAdmins(filepath.Join(t.TempDir(), "admins.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunInvitesThenSkips(t *testing.T) {
	dir := t.TempDir()
	db, err := repository.InitDB(filepath.Join(dir, "office.db"))
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	defer db.Close()

	path := filepath.Join(dir, "admins.yaml")
	if err := os.WriteFile(path, []byte("admins:\n  - email: admin@example.com\n    name: Admin\n"), 0o600); err != nil {
		t.Fatalf("write admins: %v", err)
	}
	admins, err := LoadAdmins(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	mailer := &countingMailer{}
	provider := auth.NewProvider(db, mailer, auth.Config{Secret: []byte("seed-secret"), AppBaseURL: "http://office.test"}, logging.Discard())
	employees := repository.NewEmployeeRepository(db)

	// An existing staff row with the same email is reused.
	existing := models.Employee{Name: "Old", Role: "Otro", Email: "admin@example.com", Active: true, InviteStatus: models.InviteNone}
	if err := employees.Create(context.Background(), &existing); err != nil {
		t.Fatalf("create employee: %v", err)
	}

	seeder := NewSeeder(provider, employees, mailer, logging.Discard())
	results, err := seeder.Run(context.Background(), admins)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 1 || results[0].Status != StatusInvited {
		t.Fatalf("unexpected results %+v", results)
	}
	if len(mailer.sent) != 1 || !strings.Contains(mailer.sent[0].Body, "/setup-password#") {
		t.Fatalf("expected an invite mail, got %+v", mailer.sent)
	}

	e, err := employees.Get(context.Background(), existing.ID)
	if err != nil {
		t.Fatalf("get employee: %v", err)
	}
	if e.Role != models.AdminRole || e.InviteStatus != models.InvitePending || e.AuthUserID == nil {
		t.Fatalf("unexpected employee %+v", e)
	}

	results, err = seeder.Run(context.Background(), admins)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if results[0].Status != StatusAlreadyExists {
		t.Fatalf("expected already_exists, got %+v", results[0])
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected no new mail, got %d", len(mailer.sent))
	}
}
