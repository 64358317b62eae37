// Package invitation drives an employee's account activation:
// none -> pending -> accepted, with pending -> pending on resend.
package invitation

import (
	"time"

	"github.com/TWRT/law-office/internal/models"
	"github.com/dustin/go-humanize"
)

var transitions = map[models.InviteStatus][]models.InviteStatus{
	models.InviteNone:     {models.InvitePending},
	models.InvitePending:  {models.InvitePending, models.InviteAccepted},
	models.InviteAccepted: {},
}

// CanTransition reports whether an employee may move from one status to another.
func CanTransition(from, to models.InviteStatus) bool {
	for _, next := range transitions[normalize(from)] {
		if next == to {
			return true
		}
	}
	return false
}

func CanResend(s models.InviteStatus) bool {
	return normalize(s) == models.InvitePending
}

func Label(s models.InviteStatus) string {
	switch normalize(s) {
	case models.InvitePending:
		return "Invitación pendiente"
	case models.InviteAccepted:
		return "Cuenta activa"
	default:
		return "Sin cuenta"
	}
}

// Rows written before invitations existed carry no status.
func normalize(s models.InviteStatus) models.InviteStatus {
	if s == "" {
		return models.InviteNone
	}
	return s
}

// View is an employee as listed by the API.
type View struct {
	models.Employee
	CanResend   bool   `json:"can_resend"`
	StatusLabel string `json:"status_label"`
	EmailLocked bool   `json:"email_locked"`
	SentAgo     string `json:"sent_ago,omitempty"`
}

func NewView(e models.Employee, now time.Time) View {
	v := View{
		Employee:    e,
		CanResend:   CanResend(e.InviteStatus),
		StatusLabel: Label(e.InviteStatus),
		EmailLocked: e.EmailLocked(),
	}
	if e.InviteSentAt != nil {
		v.SentAgo = humanize.RelTime(*e.InviteSentAt, now, "ago", "from now")
	}
	return v
}

func NewViews(employees []models.Employee, now time.Time) []View {
	views := make([]View, 0, len(employees))
	for _, e := range employees {
		views = append(views, NewView(e, now))
	}
	return views
}
