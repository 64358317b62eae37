// Package deadline turns dated court movements into due-dated tasks.
package deadline

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/models"
	"github.com/TWRT/law-office/internal/repository"
	"github.com/TWRT/law-office/internal/telemetry"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// MaxDayCount bounds the term a single movement may carry.
const MaxDayCount = 365

type DayMode string

const (
	CalendarDays DayMode = "calendar"
	BusinessDays DayMode = "business"
)

// ParseDayMode maps a configuration value to a DayMode, defaulting to calendar days.
func ParseDayMode(s string) DayMode {
	if strings.EqualFold(strings.TrimSpace(s), string(BusinessDays)) {
		return BusinessDays
	}
	return CalendarDays
}

// DueDate adds days to filing. In BusinessDays mode only Monday to Friday count.
func DueDate(filing models.Date, days int, mode DayMode) models.Date {
	if mode != BusinessDays {
		return filing.AddDays(days)
	}
	d := filing
	for counted := 0; counted < days; {
		d = d.AddDays(1)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			counted++
		}
	}
	return d
}

type MovementInput struct {
	CaseFileID  string
	Description string
	FilingDate  models.Date
	DayCount    int
}

// NormalizeMovementInput trims and validates a movement before anything is stored.
func NormalizeMovementInput(in MovementInput) (MovementInput, error) {
	in.CaseFileID = strings.TrimSpace(in.CaseFileID)
	in.Description = strings.TrimSpace(in.Description)

	fields := apperrors.Fields{}
	if in.CaseFileID == "" {
		fields.Missing("case_file_id")
	}
	if in.Description == "" {
		fields.Missing("description")
	}
	if in.FilingDate.IsZero() {
		fields.Missing("filing_date")
	}
	if in.DayCount < 1 || in.DayCount > MaxDayCount {
		fields.Invalid("day_count", fmt.Sprintf("debe estar entre 1 y %d", MaxDayCount))
	}
	if err := fields.Err(); err != nil {
		return MovementInput{}, err
	}
	return in, nil
}

type Engine struct {
	db   *sql.DB
	mode DayMode
	log  *logrus.Entry
}

func NewEngine(db *sql.DB, mode DayMode, log *logrus.Entry) *Engine {
	return &Engine{db: db, mode: mode, log: log}
}

func (e *Engine) DueDate(filing models.Date, days int) models.Date {
	return DueDate(filing, days, e.mode)
}

// RecordMovement stores the deadline task and the movement that produced it in
// a single transaction. Both rows carry the same due date.
func (e *Engine) RecordMovement(ctx context.Context, in MovementInput) (models.Movement, models.Task, error) {
	const op = "deadline.RecordMovement"
	log := e.log.WithField("operation", op)

	in, err := NormalizeMovementInput(in)
	if err != nil {
		return models.Movement{}, models.Task{}, err
	}

	ctx, span := telemetry.Tracer("deadline").Start(ctx, op)
	defer span.End()
	span.SetAttributes(
		attribute.String("case_file.id", in.CaseFileID),
		attribute.Int("movement.day_count", in.DayCount),
		attribute.String("deadline.day_mode", string(e.mode)),
	)

	due := e.DueDate(in.FilingDate, in.DayCount)
	movementID := uuid.NewString()

	task := models.Task{
		CaseFileID:  &in.CaseFileID,
		MovementID:  &movementID,
		Title:       "Plazo: " + in.Description,
		Description: fmt.Sprintf("Movimiento del %s con plazo de %d días", in.FilingDate, in.DayCount),
		DueDate:     due,
		Priority:    models.PriorityHigh,
		Status:      models.TaskPending,
		Kind:        models.TaskKindDeadline,
	}
	movement := models.Movement{
		ID:          movementID,
		CaseFileID:  in.CaseFileID,
		Description: in.Description,
		FilingDate:  in.FilingDate,
		DayCount:    in.DayCount,
		DueDate:     due,
	}

	err = repository.RunInTx(ctx, e.db, func(tx *sql.Tx) error {
		if _, err := repository.NewCaseFileRepository(tx).Get(ctx, in.CaseFileID); err != nil {
			return err
		}
		if err := repository.NewTaskRepository(tx).Create(ctx, &task); err != nil {
			return err
		}
		movement.TaskID = &task.ID
		return repository.NewMovementRepository(tx).Create(ctx, &movement)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record movement")
		log.WithError(err).Warn("movement not recorded")
		return models.Movement{}, models.Task{}, err
	}

	log.WithFields(logrus.Fields{
		"movement_id": movement.ID,
		"task_id":     task.ID,
		"due_date":    due.String(),
	}).Info("movement recorded")
	return movement, task, nil
}

// DeleteMovement removes a movement together with its deadline task.
func (e *Engine) DeleteMovement(ctx context.Context, movementID string) error {
	const op = "deadline.DeleteMovement"

	ctx, span := telemetry.Tracer("deadline").Start(ctx, op)
	defer span.End()

	err := repository.RunInTx(ctx, e.db, func(tx *sql.Tx) error {
		movements := repository.NewMovementRepository(tx)
		m, err := movements.Get(ctx, movementID)
		if err != nil {
			return err
		}
		if err := movements.Delete(ctx, m.ID); err != nil {
			return err
		}
		if m.TaskID == nil {
			return nil
		}
		err = repository.NewTaskRepository(tx).Delete(ctx, *m.TaskID)
		if apperrors.Is(err, apperrors.CodeNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete movement")
		return err
	}

	e.log.WithField("operation", op).WithField("movement_id", movementID).Info("movement deleted")
	return nil
}

// ListMovements returns a case file's movements, latest filing date first.
func (e *Engine) ListMovements(ctx context.Context, caseFileID string) ([]models.Movement, error) {
	return repository.NewMovementRepository(e.db).ListByCaseFile(ctx, caseFileID)
}
