package api

import (
	"database/sql"
	"net/http"

	"github.com/TWRT/law-office/internal/api/handlers"
	"github.com/TWRT/law-office/internal/auth"
	"github.com/TWRT/law-office/internal/client"
	"github.com/TWRT/law-office/internal/deadline"
	"github.com/TWRT/law-office/internal/invitation"
	"github.com/TWRT/law-office/internal/invite"
	"github.com/TWRT/law-office/internal/mail"
	"github.com/TWRT/law-office/internal/repository"
	"github.com/TWRT/law-office/internal/service"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Deps struct {
	DB     *sql.DB
	Auth   *auth.Provider
	Mailer mail.Mailer
	// Dispatcher sends invitations for employee create/resend. Nil means the
	// in-process dispatcher that also serves /functions/send-invite.
	Dispatcher client.InviteDispatcher
	Exporter   client.CalendarExporter
	DayMode    deadline.DayMode
	// InviteToken lets another instance call /functions/send-invite without a
	// session. Empty disables it.
	InviteToken string
	Log         *logrus.Entry
}

func SetupRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()
	log := deps.Log

	employeeRepo := repository.NewEmployeeRepository(deps.DB)
	localDispatcher := invite.NewLocalDispatcher(deps.Auth, deps.Mailer, employeeRepo, log)
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = localDispatcher
	}

	engine := deadline.NewEngine(deps.DB, deps.DayMode, log)
	invitations := invitation.NewManager(employeeRepo, dispatcher, log)

	caseFileService := service.NewCaseFileService(deps.DB, engine, log)
	taskService := service.NewTaskService(deps.DB, log)
	calendarService := service.NewCalendarService(deps.DB, deps.Exporter, log)
	employeeService := service.NewEmployeeService(employeeRepo, invitations, log)

	authHandler := handlers.NewAuthHandler(deps.Auth, employeeService, log)
	inviteHandler := handlers.NewInviteHandler(localDispatcher, log)
	caseFileHandler := handlers.NewCaseFileHandler(caseFileService, engine, log)
	taskHandler := handlers.NewTaskHandler(taskService, log)
	calendarHandler := handlers.NewCalendarHandler(calendarService, log)
	employeeHandler := handlers.NewEmployeeHandler(employeeService, log)

	secure := authHandler.RequireSession

	mux.HandleFunc("POST /auth/sign-in", authHandler.SignIn)
	mux.HandleFunc("POST /auth/sign-out", authHandler.SignOut)
	mux.HandleFunc("GET /auth/session", authHandler.Session)
	mux.HandleFunc("POST /auth/password-reset", authHandler.PasswordReset)
	mux.HandleFunc("POST /auth/setup-password", authHandler.SetupPassword)
	mux.HandleFunc("POST /auth/update-password", secure(authHandler.UpdatePassword))

	mux.HandleFunc("POST /functions/send-invite", authHandler.RequireInviteCaller(deps.InviteToken, inviteHandler.SendInvite))

	mux.HandleFunc("GET /case-files", secure(caseFileHandler.ListCaseFiles))
	mux.HandleFunc("POST /case-files", secure(caseFileHandler.CreateCaseFile))
	mux.HandleFunc("POST /case-files/procuration", secure(caseFileHandler.SaveProcuration))
	mux.HandleFunc("GET /case-files/{id}", secure(caseFileHandler.GetCaseFile))
	mux.HandleFunc("PUT /case-files/{id}", secure(caseFileHandler.UpdateCaseFile))
	mux.HandleFunc("GET /case-files/{id}/movements", secure(caseFileHandler.ListMovements))
	mux.HandleFunc("POST /case-files/{id}/movements", secure(caseFileHandler.CreateMovement))
	mux.HandleFunc("DELETE /movements/{id}", secure(caseFileHandler.DeleteMovement))

	mux.HandleFunc("GET /tasks", secure(taskHandler.ListTasks))
	mux.HandleFunc("POST /tasks", secure(taskHandler.CreateTask))
	mux.HandleFunc("PATCH /tasks/{id}/status", secure(taskHandler.UpdateTaskStatus))
	mux.HandleFunc("DELETE /tasks/{id}", secure(taskHandler.DeleteTask))

	mux.HandleFunc("GET /calendar", secure(calendarHandler.GetMonth))
	mux.HandleFunc("POST /calendar/events", secure(calendarHandler.CreateEvent))
	mux.HandleFunc("DELETE /calendar/events/{id}", secure(calendarHandler.DeleteEvent))
	mux.HandleFunc("POST /calendar/export", secure(calendarHandler.ExportMonth))

	mux.HandleFunc("GET /employees", secure(employeeHandler.ListEmployees))
	mux.HandleFunc("POST /employees", secure(employeeHandler.CreateEmployee))
	mux.HandleFunc("PUT /employees/{id}", secure(employeeHandler.UpdateEmployee))
	mux.HandleFunc("DELETE /employees/{id}", secure(employeeHandler.DeactivateEmployee))
	mux.HandleFunc("POST /employees/{id}/resend-invite", secure(employeeHandler.ResendInvite))

	return otelhttp.NewHandler(mux, "law-office")
}
