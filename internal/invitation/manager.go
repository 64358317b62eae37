package invitation

import (
	"context"
	"strings"
	"time"

	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/client"
	"github.com/TWRT/law-office/internal/models"
	"github.com/TWRT/law-office/internal/repository"
	"github.com/sirupsen/logrus"
)

const msgEmailLocked = "El correo no puede modificarse porque la cuenta ya fue activada"

type Manager struct {
	employees  *repository.EmployeeRepository
	dispatcher client.InviteDispatcher
	log        *logrus.Entry
	now        func() time.Time
}

func NewManager(employees *repository.EmployeeRepository, dispatcher client.InviteDispatcher, log *logrus.Entry) *Manager {
	return &Manager{employees: employees, dispatcher: dispatcher, log: log, now: time.Now}
}

// Invite dispatches the first invitation for a stored employee. On failure the
// employee keeps its current status.
func (m *Manager) Invite(ctx context.Context, employeeID string) (models.Employee, error) {
	e, err := m.employees.Get(ctx, employeeID)
	if err != nil {
		return models.Employee{}, err
	}
	if !CanTransition(e.InviteStatus, models.InvitePending) {
		return e, apperrors.New(apperrors.CodeConflict, "El empleado ya tiene una cuenta activa")
	}
	return m.dispatch(ctx, e, "invitation.Invite")
}

// Resend re-issues a pending invitation and refreshes its sent time.
func (m *Manager) Resend(ctx context.Context, employeeID string) (models.Employee, error) {
	e, err := m.employees.Get(ctx, employeeID)
	if err != nil {
		return models.Employee{}, err
	}
	if !CanResend(e.InviteStatus) {
		return e, apperrors.Validation("Solo se puede reenviar una invitación pendiente")
	}
	return m.dispatch(ctx, e, "invitation.Resend")
}

// Accept records that the invited user set a password. Accepting twice is a no-op.
func (m *Manager) Accept(ctx context.Context, employeeID string) error {
	log := m.log.WithField("operation", "invitation.Accept")

	e, err := m.employees.Get(ctx, employeeID)
	if err != nil {
		return err
	}
	if normalize(e.InviteStatus) == models.InviteAccepted {
		return nil
	}
	if !CanTransition(e.InviteStatus, models.InviteAccepted) {
		return apperrors.New(apperrors.CodeConflict, "El empleado no tiene una invitación pendiente")
	}
	if err := m.employees.MarkAccepted(ctx, e.ID); err != nil {
		return err
	}
	log.WithField("employee_id", e.ID).Info("invitation accepted")
	return nil
}

// CheckEmailChange rejects edits to the address of an activated account.
func CheckEmailChange(current models.Employee, email string) error {
	if !current.EmailLocked() {
		return nil
	}
	if strings.EqualFold(strings.TrimSpace(email), current.Email) {
		return nil
	}
	fields := apperrors.Fields{}
	fields.Invalid("email", msgEmailLocked)
	return fields.Err()
}

func (m *Manager) dispatch(ctx context.Context, e models.Employee, op string) (models.Employee, error) {
	log := m.log.WithField("operation", op).WithField("employee_id", e.ID)

	if strings.TrimSpace(e.Email) == "" {
		fields := apperrors.Fields{}
		fields.Missing("email")
		return e, fields.Err()
	}

	res, err := m.dispatcher.Dispatch(ctx, client.InviteRequest{Email: e.Email, Name: e.Name, EmployeeID: e.ID})
	if err != nil {
		log.WithError(err).Warn("invite not sent")
		return e, err
	}

	if err := m.employees.MarkInvited(ctx, e.ID, m.now(), res.AuthUserID); err != nil {
		return e, err
	}
	updated, err := m.employees.Get(ctx, e.ID)
	if err != nil {
		return e, err
	}
	log.Info("invite sent")
	return updated, nil
}
