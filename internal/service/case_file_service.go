package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/TWRT/law-office/internal/agenda"
	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/deadline"
	"github.com/TWRT/law-office/internal/models"
	"github.com/TWRT/law-office/internal/repository"
	"github.com/sirupsen/logrus"
)

type CaseFileInput struct {
	Name       string         `json:"name"`
	FileNumber string         `json:"file_number"`
	TaxID      string         `json:"tax_id"`
	Phone      string         `json:"phone"`
	ClaimType  string         `json:"claim_type"`
	Amount     string         `json:"amount"`
	Urgency    models.Urgency `json:"urgency"`
}

func NormalizeCaseFileInput(in CaseFileInput) (CaseFileInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.FileNumber = strings.TrimSpace(in.FileNumber)
	in.TaxID = strings.TrimSpace(in.TaxID)
	in.Phone = strings.TrimSpace(in.Phone)
	in.ClaimType = strings.TrimSpace(in.ClaimType)
	in.Amount = strings.TrimSpace(in.Amount)
	if in.Urgency == "" {
		in.Urgency = models.UrgencyNormal
	}

	fields := apperrors.Fields{}
	if in.Name == "" {
		fields.Missing("name")
	}
	if !in.Urgency.Valid() {
		fields.Invalid("urgency", "")
	}
	if err := fields.Err(); err != nil {
		return CaseFileInput{}, err
	}
	return in, nil
}

type ProcurationInput struct {
	Date models.Date `json:"date"`
	Time string      `json:"time"`
}

type CaseFileDetail struct {
	CaseFile  models.CaseFile   `json:"case_file"`
	Movements []models.Movement `json:"movements"`
	Tasks     []models.Task     `json:"tasks"`
}

type CaseFileService struct {
	db        *sql.DB
	caseFiles *repository.CaseFileRepository
	tasks     *repository.TaskRepository
	engine    *deadline.Engine
	log       *logrus.Entry
	now       func() time.Time
}

func NewCaseFileService(db *sql.DB, engine *deadline.Engine, log *logrus.Entry) *CaseFileService {
	return &CaseFileService{
		db:        db,
		caseFiles: repository.NewCaseFileRepository(db),
		tasks:     repository.NewTaskRepository(db),
		engine:    engine,
		log:       log,
		now:       time.Now,
	}
}

func (s *CaseFileService) Create(ctx context.Context, in CaseFileInput) (models.CaseFile, error) {
	in, err := NormalizeCaseFileInput(in)
	if err != nil {
		return models.CaseFile{}, err
	}
	c := models.CaseFile{
		Name:       in.Name,
		FileNumber: in.FileNumber,
		TaxID:      in.TaxID,
		Phone:      in.Phone,
		ClaimType:  in.ClaimType,
		Amount:     in.Amount,
		Urgency:    in.Urgency,
	}
	if err := s.caseFiles.Create(ctx, &c); err != nil {
		return models.CaseFile{}, err
	}
	s.log.WithField("operation", "service.CaseFile.Create").WithField("case_file_id", c.ID).Info("case file created")
	return c, nil
}

func (s *CaseFileService) Update(ctx context.Context, id string, in CaseFileInput) (models.CaseFile, error) {
	in, err := NormalizeCaseFileInput(in)
	if err != nil {
		return models.CaseFile{}, err
	}
	c, err := s.caseFiles.Get(ctx, id)
	if err != nil {
		return models.CaseFile{}, err
	}
	c.Name = in.Name
	c.FileNumber = in.FileNumber
	c.TaxID = in.TaxID
	c.Phone = in.Phone
	c.ClaimType = in.ClaimType
	c.Amount = in.Amount
	c.Urgency = in.Urgency
	if err := s.caseFiles.Update(ctx, &c); err != nil {
		return models.CaseFile{}, err
	}
	return c, nil
}

func (s *CaseFileService) Get(ctx context.Context, id string) (models.CaseFile, error) {
	return s.caseFiles.Get(ctx, id)
}

// List returns case files newest first, narrowed by query and order.
func (s *CaseFileService) List(ctx context.Context, query string, order agenda.CaseOrder) ([]models.CaseFile, error) {
	files, err := s.caseFiles.List(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(agenda.FilterCaseFiles(files, query, order)), nil
}

func (s *CaseFileService) Detail(ctx context.Context, id string) (CaseFileDetail, error) {
	c, err := s.caseFiles.Get(ctx, id)
	if err != nil {
		return CaseFileDetail{}, err
	}
	movements, err := s.engine.ListMovements(ctx, id)
	if err != nil {
		return CaseFileDetail{}, err
	}
	tasks, err := s.tasks.List(ctx, repository.TaskQuery{CaseFileID: id, Newest: true})
	if err != nil {
		return CaseFileDetail{}, err
	}
	return CaseFileDetail{
		CaseFile:  c,
		Movements: nonNil(movements),
		Tasks:     nonNil(tasks),
	}, nil
}

// StampProcuration sets the same procuration reference on every case file.
func (s *CaseFileService) StampProcuration(ctx context.Context, in ProcurationInput) (int64, error) {
	in.Time = strings.TrimSpace(in.Time)
	fields := apperrors.Fields{}
	if in.Date.IsZero() {
		fields.Missing("date")
	}
	if in.Time != "" && !models.ValidTimeOfDay(in.Time) {
		fields.Invalid("time", "")
	}
	if err := fields.Err(); err != nil {
		return 0, err
	}

	var updated int64
	err := repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		n, err := repository.NewCaseFileRepository(tx).StampProcuration(ctx, in.Date, in.Time, s.now())
		updated = n
		return err
	})
	if err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{
		"operation": "service.CaseFile.StampProcuration",
		"date":      in.Date.String(),
		"updated":   updated,
	}).Info("procuration saved")
	return updated, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
