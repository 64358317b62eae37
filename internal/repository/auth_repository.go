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

const authUserColumns = `id, email, password_hash, display_name, employee_id, is_admin, confirmed_at, created_at, updated_at`

type AuthUserRepository struct {
	db DBTX
}

func NewAuthUserRepository(db DBTX) *AuthUserRepository {
	return &AuthUserRepository{db: db}
}

func (r *AuthUserRepository) Create(ctx context.Context, u *models.AuthUser) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auth_users (id, email, password_hash, display_name, employee_id, is_admin, confirmed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.DisplayName,
		nullString(u.EmployeeID),
		u.IsAdmin,
		nullMillis(u.ConfirmedAt),
		toMillis(u.CreatedAt),
		toMillis(u.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.New(apperrors.CodeAlreadyRegistered, "Este correo ya tiene una cuenta registrada")
		}
		return apperrors.Store("create auth user", err)
	}
	return nil
}

func (r *AuthUserRepository) Get(ctx context.Context, id string) (models.AuthUser, error) {
	return r.getOne(ctx, `SELECT `+authUserColumns+` FROM auth_users WHERE id = ?`, id)
}

func (r *AuthUserRepository) GetByEmail(ctx context.Context, email string) (models.AuthUser, error) {
	return r.getOne(ctx, `SELECT `+authUserColumns+` FROM auth_users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *AuthUserRepository) getOne(ctx context.Context, query string, arg any) (models.AuthUser, error) {
	var u models.AuthUser
	var employeeID sql.NullString
	var confirmedAt sql.NullInt64
	var createdAt, updatedAt int64

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.DisplayName,
		&employeeID,
		&u.IsAdmin,
		&confirmedAt,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AuthUser{}, apperrors.NotFound("user not found")
	}
	if err != nil {
		return models.AuthUser{}, apperrors.Store("get auth user", err)
	}
	u.EmployeeID = fromNullString(employeeID)
	u.ConfirmedAt = fromNullMillis(confirmedAt)
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}

// SetPassword stores the hash and confirms the account in one write.
func (r *AuthUserRepository) SetPassword(ctx context.Context, id, hash string, confirmedAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE auth_users
		SET password_hash = ?, confirmed_at = COALESCE(confirmed_at, ?), updated_at = ?
		WHERE id = ?
	`, hash, toMillis(confirmedAt), toMillis(now()), id)
	if err != nil {
		return apperrors.Store("set password", err)
	}
	return expectOneRow(result, "user not found")
}

type AuthSessionRepository struct {
	db DBTX
}

func NewAuthSessionRepository(db DBTX) *AuthSessionRepository {
	return &AuthSessionRepository{db: db}
}

func (r *AuthSessionRepository) Create(ctx context.Context, s *models.AuthSession) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auth_sessions (id, user_id, purpose, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, s.ID, s.UserID, s.Purpose, toMillis(s.ExpiresAt), toMillis(s.CreatedAt))
	if err != nil {
		return apperrors.Store("create session", err)
	}
	return nil
}

func (r *AuthSessionRepository) Get(ctx context.Context, id string) (models.AuthSession, error) {
	var s models.AuthSession
	var expiresAt, createdAt int64
	var revokedAt sql.NullInt64

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, purpose, expires_at, revoked_at, created_at FROM auth_sessions WHERE id = ?
	`, id).Scan(&s.ID, &s.UserID, &s.Purpose, &expiresAt, &revokedAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AuthSession{}, apperrors.NotFound("session not found")
	}
	if err != nil {
		return models.AuthSession{}, apperrors.Store("get session", err)
	}
	s.ExpiresAt = fromMillis(expiresAt)
	s.RevokedAt = fromNullMillis(revokedAt)
	s.CreatedAt = fromMillis(createdAt)
	return s, nil
}

func (r *AuthSessionRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE auth_sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`, toMillis(at), id)
	if err != nil {
		return apperrors.Store("revoke session", err)
	}
	return nil
}

// RevokeUserPurpose invalidates every outstanding token of one purpose, e.g.
// older invite links once a resend goes out.
func (r *AuthSessionRepository) RevokeUserPurpose(ctx context.Context, userID string, purpose models.TokenPurpose, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE auth_sessions SET revoked_at = ? WHERE user_id = ? AND purpose = ? AND revoked_at IS NULL
	`, toMillis(at), userID, purpose)
	if err != nil {
		return apperrors.Store("revoke sessions", err)
	}
	return nil
}
