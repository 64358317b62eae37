package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/TWRT/law-office/internal/apperrors"
)

// ExportMappingRepository links an agenda item ("task:<id>" or "event:<id>")
// to the event created for it in an external calendar.
type ExportMappingRepository struct {
	db DBTX
}

func NewExportMappingRepository(db DBTX) *ExportMappingRepository {
	return &ExportMappingRepository{db: db}
}

// Get returns the remote event id, or "" when the item was never exported.
func (r *ExportMappingRepository) Get(ctx context.Context, calendarID, sourceID string) (string, error) {
	var remoteID string
	err := r.db.QueryRowContext(ctx, `
		SELECT remote_event_id FROM export_mappings WHERE calendar_id = ? AND source_id = ?
	`, calendarID, sourceID).Scan(&remoteID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.Store("get export mapping", err)
	}
	return remoteID, nil
}

func (r *ExportMappingRepository) Set(ctx context.Context, calendarID, sourceID, remoteEventID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO export_mappings (calendar_id, source_id, remote_event_id, exported_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(calendar_id, source_id) DO UPDATE SET
			remote_event_id = excluded.remote_event_id,
			exported_at = excluded.exported_at
	`, calendarID, sourceID, remoteEventID, toMillis(now()))
	if err != nil {
		return apperrors.Store("save export mapping", err)
	}
	return nil
}
