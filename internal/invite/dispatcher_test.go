package invite

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/auth"
	"github.com/TWRT/law-office/internal/client"
	"github.com/TWRT/law-office/internal/logging"
	"github.com/TWRT/law-office/internal/mail"
	"github.com/TWRT/law-office/internal/models"
)

type fakeInviter struct {
	err   error
	calls int
}

func (f *fakeInviter) InviteUserByEmail(_ context.Context, email, name, employeeID string, _ ...auth.InviteOption) (auth.Invitation, error) {
	f.calls++
	if f.err != nil {
		return auth.Invitation{}, f.err
	}
	return auth.Invitation{UserID: "auth-1", Token: "tok", Link: "https://office.example.com/setup-password#access_token=tok"}, nil
}

type fakeMailer struct {
	err  error
	sent []mail.Message
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeMarker struct {
	err        error
	id         string
	authUserID string
}

// Get knows a single employee, emp-1, registered as ana@example.com.
func (f *fakeMarker) Get(_ context.Context, id string) (models.Employee, error) {
	if id != "emp-1" {
		return models.Employee{}, apperrors.NotFound("Empleado no encontrado")
	}
	return models.Employee{ID: id, Name: "Ana", Email: "Ana@Example.com"}, nil
}

func (f *fakeMarker) MarkInvited(_ context.Context, id string, _ time.Time, authUserID string) error {
	f.id, f.authUserID = id, authUserID
	return f.err
}

func TestDispatchInvitesMailsAndStamps(t *testing.T) {
	inviter, mailer, marker := &fakeInviter{}, &fakeMailer{}, &fakeMarker{}
	d := NewLocalDispatcher(inviter, mailer, marker, logging.Discard())

	res, err := d.Dispatch(context.Background(), client.InviteRequest{Email: " ana@example.com ", Name: "Ana", EmployeeID: "emp-1"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if res.AuthUserID != "auth-1" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].To != "ana@example.com" || !strings.Contains(mailer.sent[0].Body, "setup-password") {
		t.Fatalf("unexpected mail %+v", mailer.sent)
	}
	if marker.id != "emp-1" || marker.authUserID != "auth-1" {
		t.Fatalf("unexpected stamp %+v", marker)
	}
}

func TestDispatchRequiresAllFields(t *testing.T) {
	inviter := &fakeInviter{}
	d := NewLocalDispatcher(inviter, &fakeMailer{}, &fakeMarker{}, logging.Discard())

	_, err := d.Dispatch(context.Background(), client.InviteRequest{Email: "ana@example.com", Name: "Ana"})
	if !apperrors.Is(err, apperrors.CodeValidation) || err.Error() != MsgRequired {
		t.Fatalf("expected required fields error, got %v", err)
	}
	if inviter.calls != 0 {
		t.Fatal("expected no invite attempt")
	}
}

func TestDispatchPassesAlreadyRegistered(t *testing.T) {
	d := NewLocalDispatcher(&fakeInviter{err: auth.ErrAlreadyRegistered}, &fakeMailer{}, &fakeMarker{}, logging.Discard())

	_, err := d.Dispatch(context.Background(), client.InviteRequest{Email: "ana@example.com", Name: "Ana", EmployeeID: "emp-1"})
	if !apperrors.Is(err, apperrors.CodeAlreadyRegistered) || err.Error() != "Este correo ya tiene una cuenta registrada" {
		t.Fatalf("expected already registered, got %v", err)
	}
}

func TestDispatchFailures(t *testing.T) {
	tests := []struct {
		name    string
		inviter *fakeInviter
		mailer  *fakeMailer
	}{
		{"auth store", &fakeInviter{err: errors.New("db locked")}, &fakeMailer{}},
		{"mail", &fakeInviter{}, &fakeMailer{err: errors.New("smtp down")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marker := &fakeMarker{}
			d := NewLocalDispatcher(tt.inviter, tt.mailer, marker, logging.Discard())
			_, err := d.Dispatch(context.Background(), client.InviteRequest{Email: "ana@example.com", Name: "Ana", EmployeeID: "emp-1"})
			if !apperrors.Is(err, apperrors.CodeInviteFailed) {
				t.Fatalf("expected invite failure, got %v", err)
			}
			if marker.id != "" {
				t.Fatal("expected employee untouched")
			}
		})
	}
}

func TestDispatchIgnoresStampFailure(t *testing.T) {
	d := NewLocalDispatcher(&fakeInviter{}, &fakeMailer{}, &fakeMarker{err: errors.New("gone")}, logging.Discard())
	if _, err := d.Dispatch(context.Background(), client.InviteRequest{Email: "ana@example.com", Name: "Ana", EmployeeID: "emp-1"}); err != nil {
		t.Fatalf("expected success despite stamp failure, got %v", err)
	}
}

func TestDispatchRejectsUnknownRecipients(t *testing.T) {
	tests := []struct {
		name string
		req  client.InviteRequest
		want string
	}{
		{"malformed email", client.InviteRequest{Email: "not-an-address", Name: "Ana", EmployeeID: "emp-1"}, MsgBadEmail},
		{"made-up employee", client.InviteRequest{Email: "attacker@evil.test", Name: "X", EmployeeID: "made-up"}, MsgUnknown},
		{"email of another person", client.InviteRequest{Email: "attacker@evil.test", Name: "Ana", EmployeeID: "emp-1"}, MsgUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inviter, mailer, marker := &fakeInviter{}, &fakeMailer{}, &fakeMarker{}
			d := NewLocalDispatcher(inviter, mailer, marker, logging.Discard())

			_, err := d.Dispatch(context.Background(), tt.req)
			if !apperrors.Is(err, apperrors.CodeValidation) || err.Error() != tt.want {
				t.Fatalf("expected %q, got %v", tt.want, err)
			}
			if inviter.calls != 0 || len(mailer.sent) != 0 || marker.id != "" {
				t.Fatal("expected nothing invited, mailed or stamped")
			}
		})
	}
}
