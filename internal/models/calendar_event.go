package models

import "time"

type EventKind string

const (
	EventMeeting  EventKind = "reunion"
	EventHearing  EventKind = "audiencia"
	EventReminder EventKind = "recordatorio"
	EventGeneral  EventKind = "evento"
)

var eventColors = map[EventKind]string{
	EventMeeting:  "#3b82f6",
	EventHearing:  "#ef4444",
	EventReminder: "#eab308",
	EventGeneral:  "#64748b",
}

func (k EventKind) Valid() bool {
	_, ok := eventColors[k]
	return ok
}

// Color is fixed per kind and copied onto the row when the event is created.
func (k EventKind) Color() string {
	if c, ok := eventColors[k]; ok {
		return c
	}
	return eventColors[EventGeneral]
}

type CalendarEvent struct {
	ID            string    `json:"id"`
	Kind          EventKind `json:"kind"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Date          Date      `json:"date"`
	Time          string    `json:"time"`
	DurationHours float64   `json:"duration_hours"`
	Assignee      string    `json:"assignee"`
	CaseFileID    *string   `json:"case_file_id"`
	Color         string    `json:"color"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
