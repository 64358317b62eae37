package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/models"
	"github.com/google/uuid"
)

const employeeColumns = `id, name, role, email, phone, active, invite_status, invite_sent_at, auth_user_id, created_at, updated_at`

type EmployeeRepository struct {
	db DBTX
}

func NewEmployeeRepository(db DBTX) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Create(ctx context.Context, e *models.Employee) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.InviteStatus == "" {
		e.InviteStatus = models.InviteNone
	}
	e.CreatedAt = now()
	e.UpdatedAt = e.CreatedAt

	query := `
		INSERT INTO employees (id, name, role, email, phone, active, invite_status, invite_sent_at, auth_user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.Name,
		e.Role,
		e.Email,
		e.Phone,
		e.Active,
		e.InviteStatus,
		nullMillis(e.InviteSentAt),
		nullString(e.AuthUserID),
		toMillis(e.CreatedAt),
		toMillis(e.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.New(apperrors.CodeConflict, "ya existe un empleado con ese correo")
		}
		return apperrors.Store("create employee", err)
	}
	return nil
}

// Update writes the editable form fields. Invitation columns are owned by the
// invitation flow and never change here.
func (r *EmployeeRepository) Update(ctx context.Context, e *models.Employee) error {
	e.UpdatedAt = now()
	result, err := r.db.ExecContext(ctx, `
		UPDATE employees
		SET name = ?, role = ?, email = ?, phone = ?, active = ?, updated_at = ?
		WHERE id = ?
	`, e.Name, e.Role, e.Email, e.Phone, e.Active, toMillis(e.UpdatedAt), e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.New(apperrors.CodeConflict, "ya existe un empleado con ese correo")
		}
		return apperrors.Store("update employee", err)
	}
	return expectOneRow(result, "employee not found")
}

// UpsertByEmail inserts the employee or, when the email already exists,
// overwrites the row keyed by that email.
func (r *EmployeeRepository) UpsertByEmail(ctx context.Context, e *models.Employee) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = now()
	e.UpdatedAt = e.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, role, email, phone, active, invite_status, invite_sent_at, auth_user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) WHERE email <> '' DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			active = excluded.active,
			invite_status = excluded.invite_status,
			invite_sent_at = excluded.invite_sent_at,
			auth_user_id = excluded.auth_user_id,
			updated_at = excluded.updated_at
	`,
		e.ID,
		e.Name,
		e.Role,
		e.Email,
		e.Phone,
		e.Active,
		e.InviteStatus,
		nullMillis(e.InviteSentAt),
		nullString(e.AuthUserID),
		toMillis(e.CreatedAt),
		toMillis(e.UpdatedAt),
	)
	if err != nil {
		return apperrors.Store("upsert employee", err)
	}

	stored, err := r.GetByEmail(ctx, e.Email)
	if err != nil {
		return err
	}
	*e = stored
	return nil
}

func (r *EmployeeRepository) Get(ctx context.Context, id string) (models.Employee, error) {
	return r.getOne(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
}

func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (models.Employee, error) {
	return r.getOne(ctx, `SELECT `+employeeColumns+` FROM employees WHERE email = ? AND email <> ''`, strings.TrimSpace(email))
}

func (r *EmployeeRepository) getOne(ctx context.Context, query string, arg any) (models.Employee, error) {
	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Employee{}, apperrors.NotFound("employee not found")
	}
	if err != nil {
		return models.Employee{}, apperrors.Store("get employee", err)
	}
	return e, nil
}

// List returns all employees ordered by name; activeOnly feeds assignee pickers.
func (r *EmployeeRepository) List(ctx context.Context, activeOnly bool) ([]models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Store("list employees", err)
	}
	defer rows.Close()

	var employees []models.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, apperrors.Store("scan employee", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store("iterate employees", err)
	}
	return employees, nil
}

func (r *EmployeeRepository) ExistsActiveName(ctx context.Context, name string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees WHERE active = 1 AND name = ?`, name).Scan(&count)
	if err != nil {
		return false, apperrors.Store("check assignee", err)
	}
	return count > 0, nil
}

func (r *EmployeeRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE employees SET active = 0, updated_at = ? WHERE id = ?`, toMillis(now()), id)
	if err != nil {
		return apperrors.Store("deactivate employee", err)
	}
	return expectOneRow(result, "employee not found")
}

// MarkInvited records a successful dispatch: pending status, sent time and the
// identity the invite was bound to.
func (r *EmployeeRepository) MarkInvited(ctx context.Context, id string, sentAt time.Time, authUserID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE employees
		SET invite_status = ?, invite_sent_at = ?, auth_user_id = COALESCE(?, auth_user_id), updated_at = ?
		WHERE id = ?
	`, models.InvitePending, toMillis(sentAt), emptyAsNull(authUserID), toMillis(now()), id)
	if err != nil {
		return apperrors.Store("mark employee invited", err)
	}
	return expectOneRow(result, "employee not found")
}

func (r *EmployeeRepository) MarkAccepted(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE employees SET invite_status = ?, updated_at = ? WHERE id = ?
	`, models.InviteAccepted, toMillis(now()), id)
	if err != nil {
		return apperrors.Store("mark employee accepted", err)
	}
	return expectOneRow(result, "employee not found")
}

func scanEmployee(s rowScanner) (models.Employee, error) {
	var e models.Employee
	var sentAt sql.NullInt64
	var authUserID sql.NullString
	var createdAt, updatedAt int64

	err := s.Scan(
		&e.ID,
		&e.Name,
		&e.Role,
		&e.Email,
		&e.Phone,
		&e.Active,
		&e.InviteStatus,
		&sentAt,
		&authUserID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return models.Employee{}, err
	}
	e.InviteSentAt = fromNullMillis(sentAt)
	e.AuthUserID = fromNullString(authUserID)
	e.CreatedAt = fromMillis(createdAt)
	e.UpdatedAt = fromMillis(updatedAt)
	return e, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
