// Package seed bootstraps administrator accounts from a YAML file.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/auth"
	"github.com/TWRT/law-office/internal/mail"
	"github.com/TWRT/law-office/internal/models"
	"github.com/TWRT/law-office/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	StatusAlreadyExists = "already_exists"
	StatusInvited       = "invited"
	StatusError         = "error"
)

type Admin struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
}

type File struct {
	Admins []Admin `yaml:"admins"`
}

type Result struct {
	Email   string `json:"email"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Inviter interface {
	UserExists(ctx context.Context, email string) (bool, error)
	InviteUserByEmail(ctx context.Context, email, name, employeeID string, opts ...auth.InviteOption) (auth.Invitation, error)
}

// ParseAdmins decodes and validates an admins payload.
func ParseAdmins(data []byte) ([]Admin, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("seed: admins payload is empty")
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed: decode admins: %w", err)
	}
	if len(f.Admins) == 0 {
		return nil, fmt.Errorf("seed: no admins listed")
	}
	for i, a := range f.Admins {
		a.Email = strings.ToLower(strings.TrimSpace(a.Email))
		a.Name = strings.TrimSpace(a.Name)
		if a.Email == "" || a.Name == "" {
			return nil, fmt.Errorf("seed: admin %d: email and name are required", i+1)
		}
		f.Admins[i] = a
	}
	return f.Admins, nil
}

func LoadAdmins(path string) ([]Admin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	admins, err := ParseAdmins(data)
	if err != nil {
		return nil, fmt.Errorf("seed: %s: %w", path, err)
	}
	return admins, nil
}

type Seeder struct {
	inviter   Inviter
	employees *repository.EmployeeRepository
	mailer    mail.Mailer
	log       *logrus.Entry
	now       func() time.Time
}

func NewSeeder(inviter Inviter, employees *repository.EmployeeRepository, mailer mail.Mailer, log *logrus.Entry) *Seeder {
	return &Seeder{inviter: inviter, employees: employees, mailer: mailer, log: log, now: time.Now}
}

// Run invites every admin without an account. A failure for one admin is
// recorded in its result and does not stop the others.
func (s *Seeder) Run(ctx context.Context, admins []Admin) ([]Result, error) {
	log := s.log.WithField("operation", "seed.Run")

	results := make([]Result, 0, len(admins))
	for _, a := range admins {
		exists, err := s.inviter.UserExists(ctx, a.Email)
		if err != nil {
			return results, err
		}
		if exists {
			results = append(results, Result{Email: a.Email, Status: StatusAlreadyExists, Message: "Usuario ya existe"})
			continue
		}

		employeeID, err := s.employeeID(ctx, a.Email)
		if err != nil {
			return results, err
		}

		inv, err := s.inviter.InviteUserByEmail(ctx, a.Email, a.Name, employeeID, auth.AsAdmin())
		if err != nil {
			results = append(results, Result{Email: a.Email, Status: StatusError, Message: err.Error()})
			continue
		}

		sentAt := s.now()
		employee := models.Employee{
			ID:           employeeID,
			Name:         a.Name,
			Role:         models.AdminRole,
			Email:        a.Email,
			Active:       true,
			InviteStatus: models.InvitePending,
			InviteSentAt: &sentAt,
			AuthUserID:   &inv.UserID,
		}
		if err := s.employees.UpsertByEmail(ctx, &employee); err != nil {
			log.WithError(err).WithField("email", a.Email).Error("upsert admin employee")
		}

		err = s.mailer.Send(ctx, mail.Message{
			To:      a.Email,
			Subject: "Acceso de administrador",
			Body:    fmt.Sprintf("Hola %s,\n\nSe creó tu cuenta de administrador. Elegí una contraseña en:\n%s\n", a.Name, inv.Link),
		})
		if err != nil {
			results = append(results, Result{Email: a.Email, Status: StatusError, Message: err.Error()})
			continue
		}

		results = append(results, Result{Email: a.Email, Status: StatusInvited, Message: "Invitacion enviada"})
	}
	return results, nil
}

// employeeID reuses the row already keyed by email so the invite stays linked
// to it after the upsert.
func (s *Seeder) employeeID(ctx context.Context, email string) (string, error) {
	e, err := s.employees.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return e.ID, nil
	case apperrors.Is(err, apperrors.CodeNotFound):
		return uuid.NewString(), nil
	default:
		return "", err
	}
}
