package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/TWRT/law-office/internal/agenda"
	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/models"
	"github.com/TWRT/law-office/internal/repository"
	"github.com/sirupsen/logrus"
)

type TaskInput struct {
	CaseFileID  string              `json:"case_file_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	DueDate     models.Date         `json:"due_date"`
	DueTime     string              `json:"due_time"`
	Priority    models.TaskPriority `json:"priority"`
	Assignee    string              `json:"assignee"`
}

func NormalizeTaskInput(in TaskInput) (TaskInput, error) {
	in.CaseFileID = strings.TrimSpace(in.CaseFileID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.DueTime = strings.TrimSpace(in.DueTime)
	in.Assignee = strings.TrimSpace(in.Assignee)
	if in.Priority == "" {
		in.Priority = models.PriorityNormal
	}

	fields := apperrors.Fields{}
	if in.Title == "" {
		fields.Missing("title")
	}
	if in.Description == "" {
		fields.Missing("description")
	}
	if in.DueDate.IsZero() {
		fields.Missing("due_date")
	}
	if in.DueTime != "" && !models.ValidTimeOfDay(in.DueTime) {
		fields.Invalid("due_time", "")
	}
	if !in.Priority.Valid() {
		fields.Invalid("priority", "")
	}
	if err := fields.Err(); err != nil {
		return TaskInput{}, err
	}
	return in, nil
}

type TaskListInput struct {
	Status     string
	CaseFileID string
	From       models.Date
	To         models.Date
}

type TaskService struct {
	db        *sql.DB
	tasks     *repository.TaskRepository
	caseFiles *repository.CaseFileRepository
	employees *repository.EmployeeRepository
	log       *logrus.Entry
}

func NewTaskService(db *sql.DB, log *logrus.Entry) *TaskService {
	return &TaskService{
		db:        db,
		tasks:     repository.NewTaskRepository(db),
		caseFiles: repository.NewCaseFileRepository(db),
		employees: repository.NewEmployeeRepository(db),
		log:       log,
	}
}

// Create stores a manual task.
func (s *TaskService) Create(ctx context.Context, in TaskInput) (models.Task, error) {
	in, err := NormalizeTaskInput(in)
	if err != nil {
		return models.Task{}, err
	}
	if err := checkAssignee(ctx, s.employees, in.Assignee); err != nil {
		return models.Task{}, err
	}

	t := models.Task{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		DueTime:     in.DueTime,
		Priority:    in.Priority,
		Status:      models.TaskPending,
		Assignee:    in.Assignee,
		Kind:        models.TaskKindManual,
	}
	if in.CaseFileID != "" {
		if _, err := s.caseFiles.Get(ctx, in.CaseFileID); err != nil {
			return models.Task{}, err
		}
		t.CaseFileID = &in.CaseFileID
	}

	if err := s.tasks.Create(ctx, &t); err != nil {
		return models.Task{}, err
	}
	s.log.WithField("operation", "service.Task.Create").WithField("task_id", t.ID).Info("task created")
	return t, nil
}

// List returns tasks by due date ascending. Status "todos" or "" means any.
func (s *TaskService) List(ctx context.Context, in TaskListInput) ([]models.Task, error) {
	if in.Status != "" && in.Status != agenda.StatusAll && !models.TaskStatus(in.Status).Valid() {
		fields := apperrors.Fields{}
		fields.Invalid("estado", "")
		return nil, fields.Err()
	}
	tasks, err := s.tasks.List(ctx, repository.TaskQuery{From: in.From, To: in.To})
	if err != nil {
		return nil, err
	}
	return nonNil(agenda.FilterTasks(tasks, agenda.TaskFilter{Status: in.Status, CaseFileID: in.CaseFileID})), nil
}

func (s *TaskService) UpdateStatus(ctx context.Context, id string, status models.TaskStatus) (models.Task, error) {
	if !status.Valid() {
		fields := apperrors.Fields{}
		fields.Invalid("status", "")
		return models.Task{}, fields.Err()
	}
	if err := s.tasks.UpdateStatus(ctx, id, status); err != nil {
		return models.Task{}, err
	}
	return s.tasks.Get(ctx, id)
}

// Delete removes a task. A deadline task's movement stays, unlinked.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	err := repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		tasks := repository.NewTaskRepository(tx)
		if err := tasks.ClearMovementLink(ctx, id); err != nil {
			return err
		}
		return tasks.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.log.WithField("operation", "service.Task.Delete").WithField("task_id", id).Info("task deleted")
	return nil
}

// checkAssignee accepts an empty assignee or the name of an active employee.
func checkAssignee(ctx context.Context, employees *repository.EmployeeRepository, name string) error {
	if name == "" {
		return nil
	}
	ok, err := employees.ExistsActiveName(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		fields := apperrors.Fields{}
		fields.Invalid("assignee", "No es un empleado activo")
		return fields.Err()
	}
	return nil
}
