package service

import (
	"context"
	"strings"
	"time"

	"github.com/TWRT/law-office/internal/agenda"
	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/client"
	"github.com/TWRT/law-office/internal/models"
	"github.com/TWRT/law-office/internal/repository"
	"github.com/sirupsen/logrus"
)

const (
	minEventHours     = 0.5
	maxEventHours     = 8
	defaultEventHours = 1
)

type EventInput struct {
	Kind          models.EventKind `json:"kind"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Date          models.Date      `json:"date"`
	Time          string           `json:"time"`
	DurationHours float64          `json:"duration_hours"`
	Assignee      string           `json:"assignee"`
	CaseFileID    string           `json:"case_file_id"`
}

func NormalizeEventInput(in EventInput) (EventInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Time = strings.TrimSpace(in.Time)
	in.Assignee = strings.TrimSpace(in.Assignee)
	in.CaseFileID = strings.TrimSpace(in.CaseFileID)
	if in.Kind == "" {
		in.Kind = models.EventGeneral
	}
	if in.DurationHours == 0 {
		in.DurationHours = defaultEventHours
	}

	fields := apperrors.Fields{}
	if !in.Kind.Valid() {
		fields.Invalid("kind", "")
	}
	if in.Title == "" {
		fields.Missing("title")
	}
	if in.Date.IsZero() {
		fields.Missing("date")
	}
	switch {
	case in.Time == "":
		fields.Missing("time")
	case !models.ValidTimeOfDay(in.Time):
		fields.Invalid("time", "")
	}
	if in.DurationHours < minEventHours || in.DurationHours > maxEventHours {
		fields.Invalid("duration_hours", "debe estar entre 0.5 y 8")
	}
	if err := fields.Err(); err != nil {
		return EventInput{}, err
	}
	return in, nil
}

type MonthView struct {
	Year  int               `json:"year"`
	Month time.Month        `json:"month"`
	From  models.Date       `json:"from"`
	To    models.Date       `json:"to"`
	Days  []agenda.DayGroup `json:"days"`
}

type CalendarService struct {
	events    *repository.CalendarEventRepository
	tasks     *repository.TaskRepository
	caseFiles *repository.CaseFileRepository
	employees *repository.EmployeeRepository
	exporter  client.CalendarExporter
	log       *logrus.Entry
}

// NewCalendarService wires the calendar. A nil exporter disables Export.
func NewCalendarService(db repository.DBTX, exporter client.CalendarExporter, log *logrus.Entry) *CalendarService {
	return &CalendarService{
		events:    repository.NewCalendarEventRepository(db),
		tasks:     repository.NewTaskRepository(db),
		caseFiles: repository.NewCaseFileRepository(db),
		employees: repository.NewEmployeeRepository(db),
		exporter:  exporter,
		log:       log,
	}
}

func (s *CalendarService) CreateEvent(ctx context.Context, in EventInput) (models.CalendarEvent, error) {
	in, err := NormalizeEventInput(in)
	if err != nil {
		return models.CalendarEvent{}, err
	}
	if err := checkAssignee(ctx, s.employees, in.Assignee); err != nil {
		return models.CalendarEvent{}, err
	}

	e := models.CalendarEvent{
		Kind:          in.Kind,
		Title:         in.Title,
		Description:   in.Description,
		Date:          in.Date,
		Time:          in.Time,
		DurationHours: in.DurationHours,
		Assignee:      in.Assignee,
		Color:         in.Kind.Color(),
	}
	if in.CaseFileID != "" {
		if _, err := s.caseFiles.Get(ctx, in.CaseFileID); err != nil {
			return models.CalendarEvent{}, err
		}
		e.CaseFileID = &in.CaseFileID
	}

	if err := s.events.Create(ctx, &e); err != nil {
		return models.CalendarEvent{}, err
	}
	s.log.WithField("operation", "service.Calendar.CreateEvent").WithField("event_id", e.ID).Info("event created")
	return e, nil
}

func (s *CalendarService) DeleteEvent(ctx context.Context, id string) error {
	return s.events.Delete(ctx, id)
}

// Month groups the month's tasks and events by date.
func (s *CalendarService) Month(ctx context.Context, year int, month time.Month) (MonthView, error) {
	if month < time.January || month > time.December {
		fields := apperrors.Fields{}
		fields.Invalid("month", "")
		return MonthView{}, fields.Err()
	}
	tasks, events, from, to, err := s.monthItems(ctx, year, month)
	if err != nil {
		return MonthView{}, err
	}
	return MonthView{
		Year:  year,
		Month: month,
		From:  from,
		To:    to,
		Days:  agenda.GroupByDate(tasks, events, year, month),
	}, nil
}

// Export pushes the month's tasks and events to the configured external calendar.
func (s *CalendarService) Export(ctx context.Context, year int, month time.Month) (client.ExportResult, error) {
	if s.exporter == nil {
		return client.ExportResult{}, apperrors.Validation("La exportación a Google Calendar no está configurada")
	}
	tasks, events, _, _, err := s.monthItems(ctx, year, month)
	if err != nil {
		return client.ExportResult{}, err
	}
	res, err := s.exporter.Export(ctx, tasks, events)
	if err != nil {
		return client.ExportResult{}, apperrors.Wrap(apperrors.CodeUpstream, "Error al exportar el calendario", err)
	}
	s.log.WithFields(logrus.Fields{
		"operation": "service.Calendar.Export",
		"created":   res.Created,
		"updated":   res.Updated,
	}).Info("calendar exported")
	return res, nil
}

func (s *CalendarService) monthItems(ctx context.Context, year int, month time.Month) ([]models.Task, []models.CalendarEvent, models.Date, models.Date, error) {
	from, to := agenda.MonthRange(year, month)
	tasks, err := s.tasks.List(ctx, repository.TaskQuery{From: from, To: to})
	if err != nil {
		return nil, nil, from, to, err
	}
	events, err := s.events.ListBetween(ctx, from, to)
	if err != nil {
		return nil, nil, from, to, err
	}
	return tasks, events, from, to, nil
}
