package models

import "time"

type AuthUser struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	DisplayName  string     `json:"display_name"`
	EmployeeID   *string    `json:"employee_id"`
	IsAdmin      bool       `json:"is_admin"`
	ConfirmedAt  *time.Time `json:"confirmed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (u AuthUser) Confirmed() bool {
	return u.ConfirmedAt != nil
}

// TokenPurpose says what a signed token may be used for.
type TokenPurpose string

const (
	PurposeSession  TokenPurpose = "session"
	PurposeInvite   TokenPurpose = "invite"
	PurposeRecovery TokenPurpose = "recovery"
)

type AuthSession struct {
	ID        string
	UserID    string
	Purpose   TokenPurpose
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Session is the authenticated view handed to callers after a token check.
type Session struct {
	Token       string       `json:"access_token"`
	SessionID   string       `json:"-"`
	Purpose     TokenPurpose `json:"purpose"`
	UserID      string       `json:"user_id"`
	Email       string       `json:"email"`
	DisplayName string       `json:"display_name"`
	EmployeeID  *string      `json:"employee_id"`
	IsAdmin     bool         `json:"is_admin"`
	ExpiresAt   time.Time    `json:"expires_at"`
}
