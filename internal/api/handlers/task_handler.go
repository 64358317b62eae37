package handlers

import (
	"net/http"

	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/models"
	"github.com/TWRT/law-office/internal/service"
	"github.com/sirupsen/logrus"
)

type TaskStatusRequestBody struct {
	Status models.TaskStatus `json:"status"`
}

type TaskHandler struct {
	tasks *service.TaskService
	log   *logrus.Entry
}

func NewTaskHandler(tasks *service.TaskService, log *logrus.Entry) *TaskHandler {
	return &TaskHandler{tasks: tasks, log: log}
}

// ListTasks accepts ?estado=, ?expediente= and an optional ?from=&to= range.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Task.ListTasks")

	fields := apperrors.Fields{}
	in := service.TaskListInput{
		Status:     r.URL.Query().Get("estado"),
		CaseFileID: r.URL.Query().Get("expediente"),
		From:       dateParam(r, "from", fields),
		To:         dateParam(r, "to", fields),
	}
	if err := fields.Err(); err != nil {
		writeError(w, log, err)
		return
	}

	tasks, err := h.tasks.List(r.Context(), in)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Task.CreateTask")

	var reqBody service.TaskInput
	if err := decodeJSON(r, &reqBody); err != nil {
		writeError(w, log, err)
		return
	}
	task, err := h.tasks.Create(r.Context(), reqBody)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"task": task})
}

func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Task.UpdateTaskStatus")

	var reqBody TaskStatusRequestBody
	if err := decodeJSON(r, &reqBody); err != nil {
		writeError(w, log, err)
		return
	}
	task, err := h.tasks.UpdateStatus(r.Context(), r.PathValue("id"), reqBody.Status)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": task})
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Task.DeleteTask")

	if err := h.tasks.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
