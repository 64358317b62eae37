// Package agenda filters and groups tasks, events and case files for the
// office views. Every function is pure and keeps its input order unless it
// says otherwise.
package agenda

import (
	"sort"
	"strings"
	"time"

	"github.com/TWRT/law-office/internal/models"
)

// StatusAll disables the status filter.
const StatusAll = "todos"

type TaskFilter struct {
	Status     string
	CaseFileID string
}

func FilterTasks(tasks []models.Task, f TaskFilter) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Status != "" && f.Status != StatusAll && string(t.Status) != f.Status {
			continue
		}
		if f.CaseFileID != "" && (t.CaseFileID == nil || *t.CaseFileID != f.CaseFileID) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// MonthRange returns the first and last calendar day of the month, both inclusive.
func MonthRange(year int, month time.Month) (models.Date, models.Date) {
	first := models.NewDate(year, month, 1)
	last := models.DateOf(first.Time().AddDate(0, 1, -1))
	return first, last
}

type DayGroup struct {
	Date   models.Date            `json:"date"`
	Tasks  []models.Task          `json:"tasks"`
	Events []models.CalendarEvent `json:"events"`
}

// GroupByDate buckets tasks and events of one month by date, ascending.
// Items dated outside the month are dropped.
func GroupByDate(tasks []models.Task, events []models.CalendarEvent, year int, month time.Month) []DayGroup {
	from, to := MonthRange(year, month)
	inMonth := func(d models.Date) bool {
		return !d.Before(from) && !d.After(to)
	}

	byDate := map[models.Date]*DayGroup{}
	group := func(d models.Date) *DayGroup {
		g, ok := byDate[d]
		if !ok {
			g = &DayGroup{Date: d, Tasks: []models.Task{}, Events: []models.CalendarEvent{}}
			byDate[d] = g
		}
		return g
	}

	for _, t := range tasks {
		if inMonth(t.DueDate) {
			g := group(t.DueDate)
			g.Tasks = append(g.Tasks, t)
		}
	}
	for _, e := range events {
		if inMonth(e.Date) {
			g := group(e.Date)
			g.Events = append(g.Events, e)
		}
	}

	groups := make([]DayGroup, 0, len(byDate))
	for _, g := range byDate {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Date.Before(groups[j].Date)
	})
	return groups
}

type CaseOrder string

const (
	OrderRecent CaseOrder = "reciente"
	OrderAZ     CaseOrder = "az"
	OrderUrgent CaseOrder = "urgente"
)

// FilterCaseFiles matches query against name and file number, case-insensitively.
// OrderRecent keeps input order, OrderAZ sorts by name and OrderUrgent keeps
// only urgent files.
func FilterCaseFiles(files []models.CaseFile, query string, order CaseOrder) []models.CaseFile {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.CaseFile, 0, len(files))
	for _, f := range files {
		if q != "" && !strings.Contains(strings.ToLower(f.Name), q) && !strings.Contains(strings.ToLower(f.FileNumber), q) {
			continue
		}
		if order == OrderUrgent && f.Urgency != models.UrgencyUrgent {
			continue
		}
		out = append(out, f)
	}
	if order == OrderAZ {
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	}
	return out
}
