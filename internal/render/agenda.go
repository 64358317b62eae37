// Package render draws the month agenda for terminals.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/TWRT/law-office/internal/agenda"
	"github.com/TWRT/law-office/internal/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const day = 24 * time.Hour

var monthNames = [...]string{"", "enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}

var weekdayNames = [...]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}

var relDays = []humanize.RelTimeMagnitude{
	{D: day, Format: "hoy", DivBy: 1},
	{D: 2 * day, Format: "%s 1 día", DivBy: 1},
	{D: 365 * day, Format: "%s %d días", DivBy: day},
	{D: math.MaxInt64, Format: "%s más de un año", DivBy: 1},
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	dayStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	priorityStyles = map[models.TaskPriority]lipgloss.Style{
		models.PriorityNormal: lipgloss.NewStyle(),
		models.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		models.PriorityUrgent: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")),
	}
)

// Agenda renders the grouped month with each day labelled relative to today.
func Agenda(year int, month time.Month, groups []agenda.DayGroup, today models.Date) string {
	head := titleStyle.Render(fmt.Sprintf("Agenda · %s %d", monthNames[month], year))

	if len(groups) == 0 {
		return boxStyle.Render(head + "\n" + mutedStyle.Render("Sin vencimientos ni eventos"))
	}

	sections := []string{head}
	for _, g := range groups {
		sections = append(sections, "", renderDay(g, today))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func renderDay(g agenda.DayGroup, today models.Date) string {
	header := dayStyle.Render(fmt.Sprintf("%s %02d/%02d", weekdayNames[g.Date.Weekday()], g.Date.Day, int(g.Date.Month))) +
		" " + mutedStyle.Render("· "+RelativeDay(g.Date, today))

	lines := []string{header}
	for _, e := range g.Events {
		lines = append(lines, "  ● "+eventLine(e))
	}
	for _, t := range g.Tasks {
		lines = append(lines, "  ▸ "+taskLine(t))
	}
	return strings.Join(lines, "\n")
}

func eventLine(e models.CalendarEvent) string {
	line := e.Time + " " + e.Title
	if e.DurationHours > 0 {
		line += " (" + strconv.FormatFloat(e.DurationHours, 'f', -1, 64) + " h)"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Render(line)
}

func taskLine(t models.Task) string {
	style, ok := priorityStyles[t.Priority]
	if !ok {
		style = lipgloss.NewStyle()
	}
	line := style.Render(t.Title)
	if t.DueTime != "" {
		line = t.DueTime + " " + line
	}
	meta := string(t.Status)
	if t.Assignee != "" {
		meta += ", " + t.Assignee
	}
	return line + " " + mutedStyle.Render("["+meta+"]")
}

// RelativeDay describes d against today, e.g. "hoy", "en 3 días", "hace 1 día".
func RelativeDay(d, today models.Date) string {
	return humanize.CustomRelTime(d.Time(), today.Time(), "hace", "en", relDays)
}
