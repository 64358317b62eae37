package client

import (
	"context"

	"github.com/TWRT/law-office/internal/models"
)

// InviteRequest is the payload of the send-invite function.
type InviteRequest struct {
	Email      string `json:"email"`
	Name       string `json:"nombre"`
	EmployeeID string `json:"empleadoId"`
}

type InviteResult struct {
	AuthUserID string
}

// InviteDispatcher creates the auth identity for an employee and delivers the
// activation link.
type InviteDispatcher interface {
	Dispatch(ctx context.Context, req InviteRequest) (InviteResult, error)
}

type ExportResult struct {
	Created int
	Updated int
}

// CalendarExporter pushes agenda items to an external calendar.
type CalendarExporter interface {
	Export(ctx context.Context, tasks []models.Task, events []models.CalendarEvent) (ExportResult, error)
}
