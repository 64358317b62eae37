package handlers

import (
	"net/http"

	"github.com/TWRT/law-office/internal/service"
	"github.com/sirupsen/logrus"
)

type EmployeeHandler struct {
	employees *service.EmployeeService
	log       *logrus.Entry
}

func NewEmployeeHandler(employees *service.EmployeeService, log *logrus.Entry) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, log: log}
}

// ListEmployees returns everyone by name; ?active=true limits it to active staff.
func (h *EmployeeHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Employee.ListEmployees")

	employees, err := h.employees.List(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employees": employees})
}

// CreateEmployee answers 201 even when the invitation failed; the body then
// carries invite_error.
func (h *EmployeeHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Employee.CreateEmployee")

	var reqBody service.EmployeeInput
	if err := decodeJSON(r, &reqBody); err != nil {
		writeError(w, log, err)
		return
	}
	res, err := h.employees.Create(r.Context(), reqBody)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *EmployeeHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Employee.UpdateEmployee")

	var reqBody service.EmployeeInput
	if err := decodeJSON(r, &reqBody); err != nil {
		writeError(w, log, err)
		return
	}
	v, err := h.employees.Update(r.Context(), r.PathValue("id"), reqBody)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employee": v})
}

func (h *EmployeeHandler) DeactivateEmployee(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Employee.DeactivateEmployee")

	if err := h.employees.Deactivate(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EmployeeHandler) ResendInvite(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Employee.ResendInvite")

	v, err := h.employees.ResendInvite(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employee": v})
}
