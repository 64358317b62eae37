package handlers

import (
	"net/http"

	"github.com/TWRT/law-office/internal/agenda"
	"github.com/TWRT/law-office/internal/deadline"
	"github.com/TWRT/law-office/internal/models"
	"github.com/TWRT/law-office/internal/service"
	"github.com/sirupsen/logrus"
)

type MovementRequestBody struct {
	Description string      `json:"description"`
	FilingDate  models.Date `json:"filing_date"`
	DayCount    int         `json:"day_count"`
}

type CaseFileHandler struct {
	caseFiles *service.CaseFileService
	engine    *deadline.Engine
	log       *logrus.Entry
}

func NewCaseFileHandler(caseFiles *service.CaseFileService, engine *deadline.Engine, log *logrus.Entry) *CaseFileHandler {
	return &CaseFileHandler{caseFiles: caseFiles, engine: engine, log: log}
}

func (h *CaseFileHandler) ListCaseFiles(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.CaseFile.ListCaseFiles")

	order := agenda.CaseOrder(r.URL.Query().Get("orden"))
	if order == "" {
		order = agenda.OrderRecent
	}
	files, err := h.caseFiles.List(r.Context(), r.URL.Query().Get("q"), order)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"case_files": files})
}

func (h *CaseFileHandler) CreateCaseFile(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.CaseFile.CreateCaseFile")

	var reqBody service.CaseFileInput
	if err := decodeJSON(r, &reqBody); err != nil {
		writeError(w, log, err)
		return
	}
	c, err := h.caseFiles.Create(r.Context(), reqBody)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"case_file": c})
}

// GetCaseFile answers with the case file, its movements and its tasks.
func (h *CaseFileHandler) GetCaseFile(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.CaseFile.GetCaseFile")

	detail, err := h.caseFiles.Detail(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *CaseFileHandler) UpdateCaseFile(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.CaseFile.UpdateCaseFile")

	var reqBody service.CaseFileInput
	if err := decodeJSON(r, &reqBody); err != nil {
		writeError(w, log, err)
		return
	}
	c, err := h.caseFiles.Update(r.Context(), r.PathValue("id"), reqBody)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"case_file": c})
}

func (h *CaseFileHandler) SaveProcuration(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.CaseFile.SaveProcuration")

	var reqBody service.ProcurationInput
	if err := decodeJSON(r, &reqBody); err != nil {
		writeError(w, log, err)
		return
	}
	n, err := h.caseFiles.StampProcuration(r.Context(), reqBody)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": n})
}

func (h *CaseFileHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.CaseFile.ListMovements")

	id := r.PathValue("id")
	if _, err := h.caseFiles.Get(r.Context(), id); err != nil {
		writeError(w, log, err)
		return
	}
	movements, err := h.engine.ListMovements(r.Context(), id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	if movements == nil {
		movements = []models.Movement{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"movements": movements})
}

func (h *CaseFileHandler) CreateMovement(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.CaseFile.CreateMovement")

	var reqBody MovementRequestBody
	if err := decodeJSON(r, &reqBody); err != nil {
		writeError(w, log, err)
		return
	}
	m, task, err := h.engine.RecordMovement(r.Context(), deadline.MovementInput{
		CaseFileID:  r.PathValue("id"),
		Description: reqBody.Description,
		FilingDate:  reqBody.FilingDate,
		DayCount:    reqBody.DayCount,
	})
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"movement": m, "task": task})
}

func (h *CaseFileHandler) DeleteMovement(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.CaseFile.DeleteMovement")

	if err := h.engine.DeleteMovement(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
