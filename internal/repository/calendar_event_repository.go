package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/models"
	"github.com/google/uuid"
)

const calendarEventColumns = `id, kind, title, description, date, time, duration_hours, assignee, case_file_id, color, created_at, updated_at`

type CalendarEventRepository struct {
	db DBTX
}

func NewCalendarEventRepository(db DBTX) *CalendarEventRepository {
	return &CalendarEventRepository{db: db}
}

func (r *CalendarEventRepository) Create(ctx context.Context, e *models.CalendarEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = now()
	e.UpdatedAt = e.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO calendar_events (id, kind, title, description, date, time, duration_hours, assignee, case_file_id, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.Kind,
		e.Title,
		e.Description,
		e.Date,
		e.Time,
		e.DurationHours,
		e.Assignee,
		nullString(e.CaseFileID),
		e.Color,
		toMillis(e.CreatedAt),
		toMillis(e.UpdatedAt),
	)
	if err != nil {
		return apperrors.Store("create calendar event", err)
	}
	return nil
}

func (r *CalendarEventRepository) Get(ctx context.Context, id string) (models.CalendarEvent, error) {
	e, err := scanCalendarEvent(r.db.QueryRowContext(ctx, `SELECT `+calendarEventColumns+` FROM calendar_events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.CalendarEvent{}, apperrors.NotFound("calendar event not found")
	}
	if err != nil {
		return models.CalendarEvent{}, apperrors.Store("get calendar event", err)
	}
	return e, nil
}

// ListBetween returns events whose date is within [from, to], earliest first.
func (r *CalendarEventRepository) ListBetween(ctx context.Context, from, to models.Date) ([]models.CalendarEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+calendarEventColumns+` FROM calendar_events
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, time ASC
	`, from, to)
	if err != nil {
		return nil, apperrors.Store("list calendar events", err)
	}
	defer rows.Close()

	var events []models.CalendarEvent
	for rows.Next() {
		e, err := scanCalendarEvent(rows)
		if err != nil {
			return nil, apperrors.Store("scan calendar event", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store("iterate calendar events", err)
	}
	return events, nil
}

func (r *CalendarEventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = ?`, id)
	if err != nil {
		return apperrors.Store("delete calendar event", err)
	}
	return expectOneRow(result, "calendar event not found")
}

func scanCalendarEvent(s rowScanner) (models.CalendarEvent, error) {
	var e models.CalendarEvent
	var caseFileID sql.NullString
	var createdAt, updatedAt int64

	err := s.Scan(
		&e.ID,
		&e.Kind,
		&e.Title,
		&e.Description,
		&e.Date,
		&e.Time,
		&e.DurationHours,
		&e.Assignee,
		&caseFileID,
		&e.Color,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return models.CalendarEvent{}, err
	}
	e.CaseFileID = fromNullString(caseFileID)
	e.CreatedAt = fromMillis(createdAt)
	e.UpdatedAt = fromMillis(updatedAt)
	return e, nil
}
