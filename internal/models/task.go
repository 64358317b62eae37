package models

import "time"

type TaskPriority string

const (
	PriorityNormal TaskPriority = "Normal"
	PriorityHigh   TaskPriority = "Alta"
	PriorityUrgent TaskPriority = "Urgente"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskPending TaskStatus = "Pendiente"
	TaskDone    TaskStatus = "Completado"
	TaskMissed  TaskStatus = "NoRealizado"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskDone, TaskMissed:
		return true
	}
	return false
}

// TaskKind separates hand-written tasks from the ones spawned by a movement.
type TaskKind string

const (
	TaskKindManual   TaskKind = "tarea"
	TaskKindDeadline TaskKind = "plazo"
)

type Task struct {
	ID          string       `json:"id"`
	CaseFileID  *string      `json:"case_file_id"`
	MovementID  *string      `json:"movement_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     Date         `json:"due_date"`
	DueTime     string       `json:"due_time,omitempty"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	Assignee    string       `json:"assignee"`
	Kind        TaskKind     `json:"kind"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
