package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/models"
	"github.com/google/uuid"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const caseFileColumns = `id, name, file_number, tax_id, phone, claim_type, amount, urgency,
	procuration_date, procuration_time, procuration_saved_at, created_at, updated_at`

type CaseFileRepository struct {
	db DBTX
}

func NewCaseFileRepository(db DBTX) *CaseFileRepository {
	return &CaseFileRepository{db: db}
}

func (r *CaseFileRepository) Create(ctx context.Context, c *models.CaseFile) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Urgency == "" {
		c.Urgency = models.UrgencyNormal
	}
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt

	query := `
		INSERT INTO case_files (id, name, file_number, tax_id, phone, claim_type, amount, urgency, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.FileNumber,
		c.TaxID,
		c.Phone,
		c.ClaimType,
		c.Amount,
		c.Urgency,
		toMillis(c.CreatedAt),
		toMillis(c.UpdatedAt),
	)
	if err != nil {
		return apperrors.Store("create case file", err)
	}
	return nil
}

// Update rewrites the form fields; procuration columns are left untouched.
func (r *CaseFileRepository) Update(ctx context.Context, c *models.CaseFile) error {
	c.UpdatedAt = now()
	query := `
		UPDATE case_files
		SET name = ?, file_number = ?, tax_id = ?, phone = ?, claim_type = ?, amount = ?, urgency = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		c.Name,
		c.FileNumber,
		c.TaxID,
		c.Phone,
		c.ClaimType,
		c.Amount,
		c.Urgency,
		toMillis(c.UpdatedAt),
		c.ID,
	)
	if err != nil {
		return apperrors.Store("update case file", err)
	}
	return expectOneRow(result, "case file not found")
}

func (r *CaseFileRepository) Get(ctx context.Context, id string) (models.CaseFile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+caseFileColumns+` FROM case_files WHERE id = ?`, id)
	c, err := scanCaseFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CaseFile{}, apperrors.NotFound("case file not found")
	}
	if err != nil {
		return models.CaseFile{}, apperrors.Store("get case file", err)
	}
	return c, nil
}

// List returns every case file, most recently created first.
func (r *CaseFileRepository) List(ctx context.Context) ([]models.CaseFile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+caseFileColumns+` FROM case_files ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, apperrors.Store("list case files", err)
	}
	defer rows.Close()

	var files []models.CaseFile
	for rows.Next() {
		c, err := scanCaseFile(rows)
		if err != nil {
			return nil, apperrors.Store("scan case file", err)
		}
		files = append(files, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store("iterate case files", err)
	}
	return files, nil
}

// StampProcuration writes the same reference date/time on every case file and
// returns how many rows were touched.
func (r *CaseFileRepository) StampProcuration(ctx context.Context, date models.Date, timeOfDay string, savedAt time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE case_files
		SET procuration_date = ?, procuration_time = ?, procuration_saved_at = ?, updated_at = ?
	`, date, emptyAsNull(timeOfDay), toMillis(savedAt), toMillis(savedAt))
	if err != nil {
		return 0, apperrors.Store("stamp procuration", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Store("stamp procuration rows affected", err)
	}
	return n, nil
}

func scanCaseFile(s rowScanner) (models.CaseFile, error) {
	var c models.CaseFile
	var procTime sql.NullString
	var savedAt sql.NullInt64
	var createdAt, updatedAt int64

	err := s.Scan(
		&c.ID,
		&c.Name,
		&c.FileNumber,
		&c.TaxID,
		&c.Phone,
		&c.ClaimType,
		&c.Amount,
		&c.Urgency,
		&c.ProcurationDate,
		&procTime,
		&savedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return models.CaseFile{}, err
	}
	c.ProcurationTime = procTime.String
	c.ProcurationSavedAt = fromNullMillis(savedAt)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return c, nil
}

func expectOneRow(result sql.Result, notFound string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperrors.Store("rows affected", err)
	}
	if n == 0 {
		return apperrors.NotFound(notFound)
	}
	return nil
}
