package handlers

import (
	"net/http"
	"time"

	"github.com/TWRT/law-office/internal/service"
	"github.com/sirupsen/logrus"
)

type CalendarHandler struct {
	calendar *service.CalendarService
	log      *logrus.Entry
	now      func() time.Time
}

func NewCalendarHandler(calendar *service.CalendarService, log *logrus.Entry) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, log: log, now: time.Now}
}

func (h *CalendarHandler) GetMonth(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Calendar.GetMonth")

	year, month, err := monthParams(r, h.now())
	if err != nil {
		writeError(w, log, err)
		return
	}
	view, err := h.calendar.Month(r.Context(), year, month)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CalendarHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Calendar.CreateEvent")

	var reqBody service.EventInput
	if err := decodeJSON(r, &reqBody); err != nil {
		writeError(w, log, err)
		return
	}
	event, err := h.calendar.CreateEvent(r.Context(), reqBody)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"event": event})
}

func (h *CalendarHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Calendar.DeleteEvent")

	if err := h.calendar.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CalendarHandler) ExportMonth(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Calendar.ExportMonth")

	year, month, err := monthParams(r, h.now())
	if err != nil {
		writeError(w, log, err)
		return
	}
	res, err := h.calendar.Export(r.Context(), year, month)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"created": res.Created, "updated": res.Updated})
}
