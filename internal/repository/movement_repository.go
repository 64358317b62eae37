package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/models"
	"github.com/google/uuid"
)

const movementColumns = `id, case_file_id, description, filing_date, day_count, due_date, task_id, created_at, updated_at`

type MovementRepository struct {
	db DBTX
}

func NewMovementRepository(db DBTX) *MovementRepository {
	return &MovementRepository{db: db}
}

func (r *MovementRepository) Create(ctx context.Context, m *models.Movement) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = now()
	m.UpdatedAt = m.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO movements (id, case_file_id, description, filing_date, day_count, due_date, task_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.ID,
		m.CaseFileID,
		m.Description,
		m.FilingDate,
		m.DayCount,
		m.DueDate,
		nullString(m.TaskID),
		toMillis(m.CreatedAt),
		toMillis(m.UpdatedAt),
	)
	if err != nil {
		return apperrors.Store("create movement", err)
	}
	return nil
}

func (r *MovementRepository) Get(ctx context.Context, id string) (models.Movement, error) {
	m, err := scanMovement(r.db.QueryRowContext(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Movement{}, apperrors.NotFound("movement not found")
	}
	if err != nil {
		return models.Movement{}, apperrors.Store("get movement", err)
	}
	return m, nil
}

// ListByCaseFile returns the newest filing first.
func (r *MovementRepository) ListByCaseFile(ctx context.Context, caseFileID string) ([]models.Movement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+movementColumns+` FROM movements
		WHERE case_file_id = ?
		ORDER BY filing_date DESC, created_at DESC
	`, caseFileID)
	if err != nil {
		return nil, apperrors.Store("list movements", err)
	}
	defer rows.Close()

	var movements []models.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, apperrors.Store("scan movement", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store("iterate movements", err)
	}
	return movements, nil
}

func (r *MovementRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM movements WHERE id = ?`, id)
	if err != nil {
		return apperrors.Store("delete movement", err)
	}
	return expectOneRow(result, "movement not found")
}

func scanMovement(s rowScanner) (models.Movement, error) {
	var m models.Movement
	var taskID sql.NullString
	var createdAt, updatedAt int64

	err := s.Scan(
		&m.ID,
		&m.CaseFileID,
		&m.Description,
		&m.FilingDate,
		&m.DayCount,
		&m.DueDate,
		&taskID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return models.Movement{}, err
	}
	m.TaskID = fromNullString(taskID)
	m.CreatedAt = fromMillis(createdAt)
	m.UpdatedAt = fromMillis(updatedAt)
	return m, nil
}
