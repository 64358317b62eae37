package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/invitation"
	"github.com/TWRT/law-office/internal/models"
	"github.com/TWRT/law-office/internal/repository"
	"github.com/sirupsen/logrus"
)

type EmployeeInput struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Active *bool  `json:"active"`
}

func NormalizeEmployeeInput(in EmployeeInput) (EmployeeInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.TrimSpace(in.Role)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)

	fields := apperrors.Fields{}
	if in.Name == "" {
		fields.Missing("name")
	}
	switch {
	case in.Role == "":
		fields.Missing("role")
	case !models.ValidRole(in.Role):
		fields.Invalid("role", "")
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			fields.Invalid("email", "")
		}
	}
	if err := fields.Err(); err != nil {
		return EmployeeInput{}, err
	}
	return in, nil
}

// CreateEmployeeResult carries the stored employee even when its invitation
// could not be sent; InviteError then explains why.
type CreateEmployeeResult struct {
	Employee    invitation.View `json:"employee"`
	InviteError string          `json:"invite_error,omitempty"`
}

type EmployeeService struct {
	employees   *repository.EmployeeRepository
	invitations *invitation.Manager
	log         *logrus.Entry
	now         func() time.Time
}

func NewEmployeeService(employees *repository.EmployeeRepository, invitations *invitation.Manager, log *logrus.Entry) *EmployeeService {
	return &EmployeeService{
		employees:   employees,
		invitations: invitations,
		log:         log,
		now:         time.Now,
	}
}

// Create stores the employee and, when an email is given, sends the invitation.
// A failed invitation does not undo the insert.
func (s *EmployeeService) Create(ctx context.Context, in EmployeeInput) (CreateEmployeeResult, error) {
	log := s.log.WithField("operation", "service.Employee.Create")

	in, err := NormalizeEmployeeInput(in)
	if err != nil {
		return CreateEmployeeResult{}, err
	}
	e := models.Employee{
		Name:         in.Name,
		Role:         in.Role,
		Email:        in.Email,
		Phone:        in.Phone,
		Active:       in.Active == nil || *in.Active,
		InviteStatus: models.InviteNone,
	}
	if err := s.employees.Create(ctx, &e); err != nil {
		return CreateEmployeeResult{}, err
	}
	log.WithField("employee_id", e.ID).Info("employee created")

	result := CreateEmployeeResult{Employee: invitation.NewView(e, s.now())}
	if e.Email == "" {
		return result, nil
	}

	invited, err := s.invitations.Invite(ctx, e.ID)
	if err != nil {
		log.WithError(err).WithField("employee_id", e.ID).Warn("employee created without invitation")
		result.InviteError = inviteErrorMessage(err)
		return result, nil
	}
	result.Employee = invitation.NewView(invited, s.now())
	return result, nil
}

func (s *EmployeeService) Update(ctx context.Context, id string, in EmployeeInput) (invitation.View, error) {
	in, err := NormalizeEmployeeInput(in)
	if err != nil {
		return invitation.View{}, err
	}
	e, err := s.employees.Get(ctx, id)
	if err != nil {
		return invitation.View{}, err
	}
	if err := invitation.CheckEmailChange(e, in.Email); err != nil {
		return invitation.View{}, err
	}

	e.Name = in.Name
	e.Role = in.Role
	if !e.EmailLocked() {
		e.Email = in.Email
	}
	e.Phone = in.Phone
	if in.Active != nil {
		e.Active = *in.Active
	}
	if err := s.employees.Update(ctx, &e); err != nil {
		return invitation.View{}, err
	}
	return invitation.NewView(e, s.now()), nil
}

func (s *EmployeeService) Get(ctx context.Context, id string) (invitation.View, error) {
	e, err := s.employees.Get(ctx, id)
	if err != nil {
		return invitation.View{}, err
	}
	return invitation.NewView(e, s.now()), nil
}

// List returns employees by name; activeOnly feeds assignee pickers.
func (s *EmployeeService) List(ctx context.Context, activeOnly bool) ([]invitation.View, error) {
	employees, err := s.employees.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	return nonNil(invitation.NewViews(employees, s.now())), nil
}

// Deactivate hides the employee from pickers without deleting history.
func (s *EmployeeService) Deactivate(ctx context.Context, id string) error {
	if err := s.employees.Deactivate(ctx, id); err != nil {
		return err
	}
	s.log.WithField("operation", "service.Employee.Deactivate").WithField("employee_id", id).Info("employee deactivated")
	return nil
}

func (s *EmployeeService) ResendInvite(ctx context.Context, id string) (invitation.View, error) {
	e, err := s.invitations.Resend(ctx, id)
	if err != nil {
		return invitation.View{}, err
	}
	return invitation.NewView(e, s.now()), nil
}

// AcceptInvite completes activation once the invited user has set a password.
func (s *EmployeeService) AcceptInvite(ctx context.Context, id string) error {
	return s.invitations.Accept(ctx, id)
}

func inviteErrorMessage(err error) string {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Error al enviar la invitacion"
}
