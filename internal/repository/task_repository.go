package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/models"
	"github.com/google/uuid"
)

const taskColumns = `id, case_file_id, movement_id, title, description, due_date, due_time, priority, status, assignee, kind, created_at, updated_at`

// TaskQuery narrows a task listing. Zero values mean "no constraint".
type TaskQuery struct {
	From       models.Date
	To         models.Date
	CaseFileID string
	Newest     bool
}

type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = models.TaskPending
	}
	if t.Priority == "" {
		t.Priority = models.PriorityNormal
	}
	if t.Kind == "" {
		t.Kind = models.TaskKindManual
	}
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt

	query := `
		INSERT INTO tasks (id, case_file_id, movement_id, title, description, due_date, due_time, priority, status, assignee, kind, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		nullString(t.CaseFileID),
		nullString(t.MovementID),
		t.Title,
		t.Description,
		t.DueDate,
		emptyAsNull(t.DueTime),
		t.Priority,
		t.Status,
		t.Assignee,
		t.Kind,
		toMillis(t.CreatedAt),
		toMillis(t.UpdatedAt),
	)
	if err != nil {
		return apperrors.Store("create task", err)
	}
	return nil
}

func (r *TaskRepository) Get(ctx context.Context, id string) (models.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, apperrors.NotFound("task not found")
	}
	if err != nil {
		return models.Task{}, apperrors.Store("get task", err)
	}
	return t, nil
}

// List orders by due date (ascending unless q.Newest) with creation order as a
// tie-breaker so repeated reads are stable.
func (r *TaskRepository) List(ctx context.Context, q TaskQuery) ([]models.Task, error) {
	var where []string
	var args []any
	if !q.From.IsZero() {
		where = append(where, "due_date >= ?")
		args = append(args, q.From)
	}
	if !q.To.IsZero() {
		where = append(where, "due_date <= ?")
		args = append(args, q.To)
	}
	if q.CaseFileID != "" {
		where = append(where, "case_file_id = ?")
		args = append(args, q.CaseFileID)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if q.Newest {
		query += ` ORDER BY due_date DESC, created_at DESC`
	} else {
		query += ` ORDER BY due_date ASC, created_at ASC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Store("list tasks", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, apperrors.Store("scan task", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store("iterate tasks", err)
	}
	return tasks, nil
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, status models.TaskStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`, status, toMillis(now()), id)
	if err != nil {
		return apperrors.Store("update task status", err)
	}
	return expectOneRow(result, "task not found")
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return apperrors.Store("delete task", err)
	}
	return expectOneRow(result, "task not found")
}

// ClearMovementLink detaches a task from movements that reference it so the
// task row can be deleted on its own.
func (r *TaskRepository) ClearMovementLink(ctx context.Context, taskID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE movements SET task_id = NULL, updated_at = ? WHERE task_id = ?`, toMillis(now()), taskID)
	if err != nil {
		return apperrors.Store("unlink movement", err)
	}
	return nil
}

func scanTask(s rowScanner) (models.Task, error) {
	var t models.Task
	var caseFileID, movementID, dueTime sql.NullString
	var createdAt, updatedAt int64

	err := s.Scan(
		&t.ID,
		&caseFileID,
		&movementID,
		&t.Title,
		&t.Description,
		&t.DueDate,
		&dueTime,
		&t.Priority,
		&t.Status,
		&t.Assignee,
		&t.Kind,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return models.Task{}, err
	}
	t.CaseFileID = fromNullString(caseFileID)
	t.MovementID = fromNullString(movementID)
	t.DueTime = dueTime.String
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}
