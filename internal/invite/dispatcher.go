// Package invite serves the send-invite function: it registers the invited
// address with the auth provider, mails the activation link and stamps the
// employee row.
package invite

import (
	"context"
	"fmt"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/auth"
	"github.com/TWRT/law-office/internal/client"
	"github.com/TWRT/law-office/internal/mail"
	"github.com/TWRT/law-office/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	MsgRequired = "Email, nombre y empleadoId son requeridos"
	MsgBadEmail = "Email invalido"
	MsgUnknown  = "El empleado no existe o su email no coincide"
	MsgFailed   = "Error al enviar la invitacion"
	MsgSent     = "Invitacion enviada correctamente"
)

type Inviter interface {
	InviteUserByEmail(ctx context.Context, email, name, employeeID string, opts ...auth.InviteOption) (auth.Invitation, error)
}

// EmployeeStore resolves the invited employee and stamps the invitation.
type EmployeeStore interface {
	Get(ctx context.Context, id string) (models.Employee, error)
	MarkInvited(ctx context.Context, id string, sentAt time.Time, authUserID string) error
}

type LocalDispatcher struct {
	inviter   Inviter
	mailer    mail.Mailer
	employees EmployeeStore
	log       *logrus.Entry
	now       func() time.Time
}

func NewLocalDispatcher(inviter Inviter, mailer mail.Mailer, employees EmployeeStore, log *logrus.Entry) *LocalDispatcher {
	return &LocalDispatcher{
		inviter:   inviter,
		mailer:    mailer,
		employees: employees,
		log:       log,
		now:       time.Now,
	}
}

var _ client.InviteDispatcher = (*LocalDispatcher)(nil)

func (d *LocalDispatcher) Dispatch(ctx context.Context, req client.InviteRequest) (client.InviteResult, error) {
	log := d.log.WithField("operation", "invite.Dispatch")

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	if req.Email == "" || req.Name == "" || req.EmployeeID == "" {
		return client.InviteResult{}, apperrors.Validation(MsgRequired)
	}
	if _, err := netmail.ParseAddress(req.Email); err != nil {
		return client.InviteResult{}, apperrors.Validation(MsgBadEmail)
	}
	req.Email = strings.ToLower(req.Email)

	// Only an existing employee registered under the same address can be invited.
	employee, err := d.employees.Get(ctx, req.EmployeeID)
	switch {
	case apperrors.Is(err, apperrors.CodeNotFound):
		log.WithField("employee_id", req.EmployeeID).Warn("invite for unknown employee")
		return client.InviteResult{}, apperrors.Validation(MsgUnknown)
	case err != nil:
		return client.InviteResult{}, err
	case !strings.EqualFold(strings.TrimSpace(employee.Email), req.Email):
		log.WithField("employee_id", req.EmployeeID).Warn("invite email does not match employee")
		return client.InviteResult{}, apperrors.Validation(MsgUnknown)
	}

	invitation, err := d.inviter.InviteUserByEmail(ctx, req.Email, req.Name, req.EmployeeID)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeAlreadyRegistered) {
			return client.InviteResult{}, err
		}
		log.WithError(err).Error("invite user")
		return client.InviteResult{}, apperrors.Wrap(apperrors.CodeInviteFailed, MsgFailed, err)
	}

	err = d.mailer.Send(ctx, mail.Message{
		To:      req.Email,
		Subject: "Invitación al estudio",
		Body:    fmt.Sprintf("Hola %s,\n\nFuiste invitado a la agenda del estudio. Para activar tu cuenta elegí una contraseña en:\n%s\n", req.Name, invitation.Link),
	})
	if err != nil {
		log.WithError(err).Error("send invite mail")
		return client.InviteResult{}, apperrors.Wrap(apperrors.CodeInviteFailed, MsgFailed, err)
	}

	// The invitation is out; a failed stamp is only logged.
	if err := d.employees.MarkInvited(ctx, req.EmployeeID, d.now(), invitation.UserID); err != nil {
		log.WithError(err).WithField("employee_id", req.EmployeeID).Warn("update employee invite status")
	}

	log.WithField("employee_id", req.EmployeeID).Info("invite sent")
	return client.InviteResult{AuthUserID: invitation.UserID}, nil
}
