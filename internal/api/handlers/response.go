package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/models"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps an application error to its status. Store failures are
// logged and answered with a generic message.
func writeError(w http.ResponseWriter, log *logrus.Entry, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		appErr = apperrors.Store("unexpected error", err)
	}
	status := appErr.Code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}

	message := appErr.Message
	if appErr.Code == apperrors.CodeStore {
		message = "No se pudo completar la operación"
	}
	writeJSON(w, status, errorBody{Error: message, Fields: appErr.Fields})
}

func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return apperrors.Validation("Error trying to read the body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.Validation("invalid request structure")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// monthParams reads ?year=&month=, defaulting to the current month.
func monthParams(r *http.Request, now time.Time) (int, time.Month, error) {
	year, month := now.Year(), now.Month()
	fields := apperrors.Fields{}
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			fields.Invalid("year", "")
		}
		year = y
	}
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			fields.Invalid("month", "")
		}
		month = time.Month(m)
	}
	if err := fields.Err(); err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

func dateParam(r *http.Request, name string, fields apperrors.Fields) models.Date {
	v := r.URL.Query().Get(name)
	if v == "" {
		return models.Date{}
	}
	d, err := models.ParseDate(v)
	if err != nil {
		fields.Invalid(name, "")
	}
	return d
}
