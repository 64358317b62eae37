package models

import "time"

type InviteStatus string

const (
	InviteNone     InviteStatus = "none"
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
)

var EmployeeRoles = []string{
	"Abogado",
	"Procurador",
	"Secretario",
	"Asistente",
	"Administrativo",
	"Administrador",
	"Otro",
}

const AdminRole = "Administrador"

type Employee struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Role         string       `json:"role"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	Active       bool         `json:"active"`
	InviteStatus InviteStatus `json:"invite_status"`
	InviteSentAt *time.Time   `json:"invite_sent_at"`
	AuthUserID   *string      `json:"auth_user_id"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// EmailLocked reports whether the address is bound to a linked identity.
func (e Employee) EmailLocked() bool {
	return e.InviteStatus == InviteAccepted
}

func ValidRole(role string) bool {
	for _, r := range EmployeeRoles {
		if r == role {
			return true
		}
	}
	return false
}
