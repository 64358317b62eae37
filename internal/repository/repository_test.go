package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/models"
)

func openTempDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "office.db"))
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInitDBRequiresPath(t *testing.T) {
	if _, err := InitDB(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "office.db")
	db, err := InitDB(path)
	if err != nil {
		t.Fatalf("first init: %v", err)
	}
	_ = db.Close()

	db, err = InitDB(path)
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 applied migrations, got %d", count)
	}
}

func TestUpSectionStopsAtDown(t *testing.T) {
	got := upSection("-- +migrate Up\nCREATE TABLE a(x);\n-- +migrate Down\nDROP TABLE a;")
	if got != "\nCREATE TABLE a(x);\n" {
		t.Fatalf("unexpected up section %q", got)
	}
	if upSection("SELECT 1;") != "SELECT 1;" {
		t.Fatal("expected whole content without markers")
	}
}

func TestCaseFileCreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewCaseFileRepository(openTempDB(t))

	c := &models.CaseFile{Name: "Perez c/ Gomez", FileNumber: "123/2025"}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID == "" || c.Urgency != models.UrgencyNormal {
		t.Fatalf("expected id and default urgency, got %+v", c)
	}

	c.Urgency = models.UrgencyUrgent
	c.Amount = "$ 1.000.000"
	if err := repo.Update(ctx, c); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Urgency != models.UrgencyUrgent || got.Amount != "$ 1.000.000" {
		t.Fatalf("unexpected case file %+v", got)
	}
	if !got.ProcurationDate.IsZero() || got.ProcurationSavedAt != nil {
		t.Fatalf("expected empty procuration, got %+v", got)
	}

	if _, err := repo.Get(ctx, "missing"); !apperrors.Is(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := repo.Update(ctx, &models.CaseFile{ID: "missing", Name: "x", Urgency: models.UrgencyNormal}); !apperrors.Is(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}

func TestStampProcurationTouchesEveryCaseFile(t *testing.T) {
	ctx := context.Background()
	repo := NewCaseFileRepository(openTempDB(t))

	for _, name := range []string{"A", "B", "C"} {
		if err := repo.Create(ctx, &models.CaseFile{Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	savedAt := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	n, err := repo.StampProcuration(ctx, models.NewDate(2025, time.March, 12), "10:30", savedAt)
	if err != nil {
		t.Fatalf("stamp: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 rows, got %d", n)
	}

	files, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, f := range files {
		if f.ProcurationDate.String() != "2025-03-12" || f.ProcurationTime != "10:30" {
			t.Fatalf("unexpected procuration on %s: %+v", f.Name, f)
		}
		if f.ProcurationSavedAt == nil || !f.ProcurationSavedAt.Equal(savedAt) {
			t.Fatalf("unexpected saved at %v", f.ProcurationSavedAt)
		}
	}
}

func TestEmployeeEmailUniqueAndUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewEmployeeRepository(openTempDB(t))

	first := &models.Employee{Name: "Ana", Role: "Abogado", Email: "ana@example.com", Active: true}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := &models.Employee{Name: "Otra", Role: "Otro", Email: "ana@example.com", Active: true}
	if err := repo.Create(ctx, dup); !apperrors.Is(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Blank emails never collide.
	for i := 0; i < 2; i++ {
		if err := repo.Create(ctx, &models.Employee{Name: "Sin correo", Role: "Otro", Active: true}); err != nil {
			t.Fatalf("create blank email %d: %v", i, err)
		}
	}

	sent := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	authID := "auth-1"
	upsert := &models.Employee{
		Name:         "Ana Admin",
		Role:         models.AdminRole,
		Email:        "ana@example.com",
		Active:       true,
		InviteStatus: models.InvitePending,
		InviteSentAt: &sent,
		AuthUserID:   &authID,
	}
	if err := repo.UpsertByEmail(ctx, upsert); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if upsert.ID != first.ID {
		t.Fatalf("expected upsert to keep row %s, got %s", first.ID, upsert.ID)
	}
	if upsert.Role != models.AdminRole || upsert.InviteStatus != models.InvitePending {
		t.Fatalf("unexpected upserted employee %+v", upsert)
	}
}

func TestEmployeeListActiveAndDeactivate(t *testing.T) {
	ctx := context.Background()
	repo := NewEmployeeRepository(openTempDB(t))

	bruno := &models.Employee{Name: "Bruno", Role: "Procurador", Active: true}
	ana := &models.Employee{Name: "Ana", Role: "Abogado", Active: true}
	for _, e := range []*models.Employee{bruno, ana} {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := repo.Deactivate(ctx, bruno.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	all, err := repo.List(ctx, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].Name != "Ana" {
		t.Fatalf("expected name ordering, got %+v", all)
	}
	active, err := repo.List(ctx, true)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != ana.ID {
		t.Fatalf("expected only Ana active, got %+v", active)
	}

	ok, err := repo.ExistsActiveName(ctx, "Bruno")
	if err != nil || ok {
		t.Fatalf("expected Bruno inactive, got %v %v", ok, err)
	}
}

func TestEmployeeInviteMarks(t *testing.T) {
	ctx := context.Background()
	repo := NewEmployeeRepository(openTempDB(t))

	e := &models.Employee{Name: "Carla", Role: "Secretario", Email: "carla@example.com", Active: true}
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("create: %v", err)
	}
	sent := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	if err := repo.MarkInvited(ctx, e.ID, sent, "auth-9"); err != nil {
		t.Fatalf("mark invited: %v", err)
	}
	// A resend without an identity keeps the stored one.
	if err := repo.MarkInvited(ctx, e.ID, sent.Add(time.Hour), ""); err != nil {
		t.Fatalf("mark invited again: %v", err)
	}
	got, err := repo.Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.InviteStatus != models.InvitePending || got.AuthUserID == nil || *got.AuthUserID != "auth-9" {
		t.Fatalf("unexpected employee %+v", got)
	}
	if !got.InviteSentAt.Equal(sent.Add(time.Hour)) {
		t.Fatalf("expected refreshed sent time, got %v", got.InviteSentAt)
	}

	if err := repo.MarkAccepted(ctx, e.ID); err != nil {
		t.Fatalf("mark accepted: %v", err)
	}
	got, _ = repo.Get(ctx, e.ID)
	if !got.EmailLocked() {
		t.Fatal("expected email locked after acceptance")
	}
}

func TestTaskListFilters(t *testing.T) {
	ctx := context.Background()
	db := openTempDB(t)
	cases := NewCaseFileRepository(db)
	tasks := NewTaskRepository(db)

	cf := &models.CaseFile{Name: "Exp"}
	if err := cases.Create(ctx, cf); err != nil {
		t.Fatalf("create case: %v", err)
	}

	dates := []models.Date{
		models.NewDate(2025, time.March, 20),
		models.NewDate(2025, time.February, 28),
		models.NewDate(2025, time.March, 1),
		models.NewDate(2025, time.April, 1),
	}
	for i, d := range dates {
		task := &models.Task{Title: "t", DueDate: d}
		if i%2 == 0 {
			task.CaseFileID = &cf.ID
		}
		if err := tasks.Create(ctx, task); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	march, err := tasks.List(ctx, TaskQuery{
		From: models.NewDate(2025, time.March, 1),
		To:   models.NewDate(2025, time.March, 31),
	})
	if err != nil {
		t.Fatalf("list march: %v", err)
	}
	if len(march) != 2 || march[0].DueDate.String() != "2025-03-01" || march[1].DueDate.String() != "2025-03-20" {
		t.Fatalf("unexpected march tasks %+v", march)
	}

	byCase, err := tasks.List(ctx, TaskQuery{CaseFileID: cf.ID, Newest: true})
	if err != nil {
		t.Fatalf("list by case: %v", err)
	}
	if len(byCase) != 2 || byCase[0].DueDate.String() != "2025-03-20" {
		t.Fatalf("unexpected case tasks %+v", byCase)
	}
	if byCase[0].Status != models.TaskPending || byCase[0].Kind != models.TaskKindManual {
		t.Fatalf("expected defaults, got %+v", byCase[0])
	}
}

func TestCalendarEventsBetween(t *testing.T) {
	ctx := context.Background()
	repo := NewCalendarEventRepository(openTempDB(t))

	for _, d := range []models.Date{
		models.NewDate(2025, time.March, 31),
		models.NewDate(2025, time.April, 1),
		models.NewDate(2025, time.March, 1),
	} {
		e := &models.CalendarEvent{Kind: models.EventHearing, Title: "Audiencia", Date: d, Time: "09:00", DurationHours: 1, Color: models.EventHearing.Color()}
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("create event: %v", err)
		}
	}

	events, err := repo.ListBetween(ctx, models.NewDate(2025, time.March, 1), models.NewDate(2025, time.March, 31))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 || events[0].Date.String() != "2025-03-01" || events[1].Date.String() != "2025-03-31" {
		t.Fatalf("unexpected events %+v", events)
	}
	if err := repo.Delete(ctx, events[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, events[0].ID); !apperrors.Is(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestAuthUserAndSessions(t *testing.T) {
	ctx := context.Background()
	db := openTempDB(t)
	users := NewAuthUserRepository(db)
	sessions := NewAuthSessionRepository(db)

	u := &models.AuthUser{Email: " Ana@Example.com ", DisplayName: "Ana"}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := users.Create(ctx, &models.AuthUser{Email: "ana@example.com"}); !apperrors.Is(err, apperrors.CodeAlreadyRegistered) {
		t.Fatalf("expected already registered, got %v", err)
	}

	got, err := users.GetByEmail(ctx, "ANA@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.Confirmed() {
		t.Fatal("expected unconfirmed user")
	}
	if err := users.SetPassword(ctx, u.ID, "hash", time.Now()); err != nil {
		t.Fatalf("set password: %v", err)
	}
	got, _ = users.Get(ctx, u.ID)
	if !got.Confirmed() || got.PasswordHash != "hash" {
		t.Fatalf("expected confirmed user with hash, got %+v", got)
	}

	s := &models.AuthSession{UserID: u.ID, Purpose: models.PurposeInvite, ExpiresAt: time.Now().Add(time.Hour)}
	if err := sessions.Create(ctx, s); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := sessions.RevokeUserPurpose(ctx, u.ID, models.PurposeInvite, time.Now()); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	stored, err := sessions.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if stored.RevokedAt == nil {
		t.Fatal("expected revoked session")
	}
}

func TestExportMappings(t *testing.T) {
	db := openTempDB(t)
	ctx := context.Background()
	mappings := NewExportMappingRepository(db)

	id, err := mappings.Get(ctx, "primary", "task:1")
	if err != nil || id != "" {
		t.Fatalf("expected no mapping, got %q %v", id, err)
	}

	if err := mappings.Set(ctx, "primary", "task:1", "g1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := mappings.Set(ctx, "primary", "task:1", "g2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := mappings.Set(ctx, "other", "task:1", "g3"); err != nil {
		t.Fatalf("set other calendar: %v", err)
	}

	id, err = mappings.Get(ctx, "primary", "task:1")
	if err != nil || id != "g2" {
		t.Fatalf("expected g2, got %q %v", id, err)
	}
	id, err = mappings.Get(ctx, "other", "task:1")
	if err != nil || id != "g3" {
		t.Fatalf("expected g3 on the other calendar, got %q %v", id, err)
	}
}
