package render

import (
	"strings"
	"testing"

	"github.com/TWRT/law-office/internal/agenda"
	"github.com/TWRT/law-office/internal/models"
)

func TestRelativeDay(t *testing.T) {
	today := models.NewDate(2025, 3, 10)
	cases := map[models.Date]string{
		today:                        "hoy",
		models.NewDate(2025, 3, 11):  "en 1 día",
		models.NewDate(2025, 3, 15):  "en 5 días",
		models.NewDate(2025, 3, 7):   "hace 3 días",
		models.NewDate(2026, 12, 31): "en más de un año",
	}
	for d, want := range cases {
		if got := RelativeDay(d, today); got != want {
			t.Fatalf("%s: expected %q, got %q", d, want, got)
		}
	}
}

func TestAgendaListsDays(t *testing.T) {
	tasks := []models.Task{{
		Title:    "Plazo: Traslado de demanda",
		DueDate:  models.NewDate(2025, 3, 15),
		Priority: models.PriorityHigh,
		Status:   models.TaskPending,
		Assignee: "Lucía",
	}}
	events := []models.CalendarEvent{{
		Title:         "Audiencia preliminar",
		Date:          models.NewDate(2025, 3, 12),
		Time:          "10:00",
		DurationHours: 1.5,
		Color:         models.EventHearing.Color(),
	}}
	groups := agenda.GroupByDate(tasks, events, 2025, 3)

	out := Agenda(2025, 3, groups, models.NewDate(2025, 3, 10))
	for _, want := range []string{"marzo 2025", "Miércoles 12/03", "10:00 Audiencia preliminar (1.5 h)", "Sábado 15/03", "Plazo: Traslado de demanda", "Pendiente, Lucía", "en 5 días"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Index(out, "12/03") > strings.Index(out, "15/03") {
		t.Fatalf("expected days in ascending order:\n%s", out)
	}
}

func TestAgendaEmptyMonth(t *testing.T) {
	out := Agenda(2025, 2, nil, models.NewDate(2025, 2, 1))
	if !strings.Contains(out, "Sin vencimientos ni eventos") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
