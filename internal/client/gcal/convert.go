package gcal

import (
	"fmt"
	"time"

	"github.com/TWRT/law-office/internal/models"
	"google.golang.org/api/calendar/v3"
)

// sourceKey is the private extended property holding the agenda item id.
const sourceKey = "law_office_id"

const localDateTime = "2006-01-02T15:04:05"

// Google Calendar palette ids.
var priorityColors = map[models.TaskPriority]string{
	models.PriorityNormal: "7",
	models.PriorityHigh:   "6",
	models.PriorityUrgent: "11",
}

var kindColors = map[models.EventKind]string{
	models.EventMeeting:  "9",
	models.EventHearing:  "11",
	models.EventReminder: "5",
	models.EventGeneral:  "8",
}

func taskSourceID(t models.Task) string {
	return "task:" + t.ID
}

func eventSourceID(e models.CalendarEvent) string {
	return "event:" + e.ID
}

func taskToEvent(t models.Task, timeZone string) (*calendar.Event, error) {
	start, end, err := span(t.DueDate, t.DueTime, 1, timeZone)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", t.ID, err)
	}
	description := t.Description
	if t.Assignee != "" {
		description += "\n\nResponsable: " + t.Assignee
	}
	return &calendar.Event{
		Summary:     t.Title,
		Description: description,
		ColorId:     priorityColors[t.Priority],
		Start:       start,
		End:         end,
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{sourceKey: taskSourceID(t)},
		},
	}, nil
}

func calendarEventToEvent(e models.CalendarEvent, timeZone string) (*calendar.Event, error) {
	start, end, err := span(e.Date, e.Time, e.DurationHours, timeZone)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", e.ID, err)
	}
	return &calendar.Event{
		Summary:     e.Title,
		Description: e.Description,
		ColorId:     kindColors[e.Kind],
		Start:       start,
		End:         end,
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{sourceKey: eventSourceID(e)},
		},
	}, nil
}

// span builds an all-day range when clock is empty and a timed one otherwise.
func span(d models.Date, clock string, hours float64, timeZone string) (*calendar.EventDateTime, *calendar.EventDateTime, error) {
	if d.IsZero() {
		return nil, nil, fmt.Errorf("missing date")
	}
	if clock == "" {
		return &calendar.EventDateTime{Date: d.String()},
			&calendar.EventDateTime{Date: d.AddDays(1).String()}, nil
	}

	hm, err := time.Parse(models.TimeLayout, clock)
	if err != nil {
		return nil, nil, fmt.Errorf("parse time %q: %w", clock, err)
	}
	if hours <= 0 {
		hours = 1
	}
	base := d.Time()
	start := time.Date(base.Year(), base.Month(), base.Day(), hm.Hour(), hm.Minute(), 0, 0, time.UTC)
	end := start.Add(time.Duration(hours * float64(time.Hour)))
	return &calendar.EventDateTime{DateTime: start.Format(localDateTime), TimeZone: timeZone},
		&calendar.EventDateTime{DateTime: end.Format(localDateTime), TimeZone: timeZone}, nil
}

// needsUpdate returns a patch with the fields that differ, or nil.
func needsUpdate(existing, target *calendar.Event) *calendar.Event {
	patch := &calendar.Event{}
	changed := false
	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		changed = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		changed = true
	}
	if existing.ColorId != target.ColorId {
		patch.ColorId = target.ColorId
		changed = true
	}
	if !sameTime(existing.Start, target.Start) || !sameTime(existing.End, target.End) {
		patch.Start = target.Start
		patch.End = target.End
		changed = true
	}
	if !changed {
		return nil
	}
	return patch
}

func sameTime(a, b *calendar.EventDateTime) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Date != "" || b.Date != "" {
		return a.Date == b.Date
	}
	return trimOffset(a.DateTime) == trimOffset(b.DateTime)
}

// trimOffset drops the zone suffix the API adds to returned date-times.
func trimOffset(s string) string {
	if len(s) > len(localDateTime) {
		return s[:len(localDateTime)]
	}
	return s
}
