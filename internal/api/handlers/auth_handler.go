package handlers

import (
	"net/http"

	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/auth"
	"github.com/TWRT/law-office/internal/requestctx"
	"github.com/TWRT/law-office/internal/service"
	"github.com/sirupsen/logrus"
)

type SignInRequestBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PasswordResetRequestBody struct {
	Email string `json:"email"`
}

type SetPasswordRequestBody struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type AuthHandler struct {
	auth      *auth.Provider
	employees *service.EmployeeService
	log       *logrus.Entry
}

func NewAuthHandler(provider *auth.Provider, employees *service.EmployeeService, log *logrus.Entry) *AuthHandler {
	return &AuthHandler{auth: provider, employees: employees, log: log}
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Auth.SignIn")

	var reqBody SignInRequestBody
	if err := decodeJSON(r, &reqBody); err != nil {
		writeError(w, log, err)
		return
	}
	fields := apperrors.Fields{}
	if reqBody.Email == "" {
		fields.Missing("email")
	}
	if reqBody.Password == "" {
		fields.Missing("password")
	}
	if err := fields.Err(); err != nil {
		writeError(w, log, err)
		return
	}

	session, err := h.auth.SignIn(r.Context(), reqBody.Email, reqBody.Password)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": session})
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Auth.SignOut")
	if err := h.auth.SignOut(r.Context(), bearerToken(r)); err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Auth.Session")
	session, err := h.auth.CurrentSession(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": session})
}

func (h *AuthHandler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Auth.PasswordReset")

	var reqBody PasswordResetRequestBody
	if err := decodeJSON(r, &reqBody); err != nil {
		writeError(w, log, err)
		return
	}
	if reqBody.Email == "" {
		fields := apperrors.Fields{}
		fields.Missing("email")
		writeError(w, log, fields.Err())
		return
	}
	if err := h.auth.RequestPasswordReset(r.Context(), reqBody.Email); err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Si el correo existe, enviamos un enlace para restablecer la contraseña"})
}

// SetupPassword redeems an invite or recovery link. Whichever link first
// confirms an account activates the linked employee.
func (h *AuthHandler) SetupPassword(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Auth.SetupPassword")

	var reqBody SetPasswordRequestBody
	if err := decodeJSON(r, &reqBody); err != nil {
		writeError(w, log, err)
		return
	}
	if err := checkPasswordPair(reqBody); err != nil {
		writeError(w, log, err)
		return
	}

	result, err := h.auth.UpdateCurrentUser(r.Context(), bearerToken(r), reqBody.Password)
	if err != nil {
		writeError(w, log, err)
		return
	}
	if result.EmployeeID != "" {
		if err := h.employees.AcceptInvite(r.Context(), result.EmployeeID); err != nil {
			log.WithError(err).WithField("employee_id", result.EmployeeID).Warn("invite acceptance not recorded")
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": result.Session})
}

// UpdatePassword changes the password of the signed-in user.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Auth.UpdatePassword")

	session, ok := requestctx.SessionFromContext(r.Context())
	if !ok {
		writeError(w, log, auth.ErrInvalidToken)
		return
	}
	var reqBody SetPasswordRequestBody
	if err := decodeJSON(r, &reqBody); err != nil {
		writeError(w, log, err)
		return
	}
	if err := checkPasswordPair(reqBody); err != nil {
		writeError(w, log, err)
		return
	}
	if _, err := h.auth.UpdateCurrentUser(r.Context(), session.Token, reqBody.Password); err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Contraseña actualizada"})
}

func checkPasswordPair(body SetPasswordRequestBody) error {
	fields := apperrors.Fields{}
	switch {
	case body.Password == "":
		fields.Missing("password")
	case len(body.Password) < auth.MinPasswordLength:
		fields.Invalid("password", "La contraseña debe tener al menos 6 caracteres")
	case body.Password != body.ConfirmPassword:
		fields.Invalid("confirm_password", "Las contraseñas no coinciden")
	}
	return fields.Err()
}
