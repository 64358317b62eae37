package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAddDaysCrossesMonthAndYear(t *testing.T) {
	cases := []struct {
		from Date
		days int
		want string
	}{
		{NewDate(2025, time.March, 10), 5, "2025-03-15"},
		{NewDate(2025, time.January, 30), 3, "2025-02-02"},
		{NewDate(2024, time.December, 30), 5, "2025-01-04"},
		{NewDate(2024, time.February, 28), 1, "2024-02-29"},
	}
	for _, tc := range cases {
		if got := tc.from.AddDays(tc.days).String(); got != tc.want {
			t.Errorf("%s + %d: expected %s, got %s", tc.from, tc.days, tc.want, got)
		}
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	if _, err := ParseDate("2025-13-01"); err == nil {
		t.Fatal("expected error for month 13")
	}
	if _, err := ParseDate("10/03/2025"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
	d, err := ParseDate(" 2025-03-10 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d != NewDate(2025, time.March, 10) {
		t.Fatalf("unexpected date %v", d)
	}
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Due Date `json:"due"`
	}
	if err := json.Unmarshal([]byte(`{"due":"2025-03-15"}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"due":"2025-03-15"}` {
		t.Fatalf("unexpected json %s", out)
	}

	empty, _ := json.Marshal(struct {
		Due Date `json:"due"`
	}{})
	if string(empty) != `{"due":null}` {
		t.Fatalf("expected null for zero date, got %s", empty)
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan("2025-03-15"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if d.String() != "2025-03-15" {
		t.Fatalf("unexpected %s", d)
	}
	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Fatalf("expected zero after nil scan, got %v (%v)", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Fatal("expected error for int")
	}
}

func TestEventKindColor(t *testing.T) {
	if EventHearing.Color() != "#ef4444" {
		t.Fatalf("unexpected hearing color %s", EventHearing.Color())
	}
	if EventKind("other").Valid() {
		t.Fatal("expected unknown kind to be invalid")
	}
	if EventKind("other").Color() != "#64748b" {
		t.Fatal("expected fallback color")
	}
}

func TestValidTimeOfDay(t *testing.T) {
	if !ValidTimeOfDay("09:30") {
		t.Fatal("expected 09:30 valid")
	}
	if ValidTimeOfDay("25:00") || ValidTimeOfDay("9am") {
		t.Fatal("expected invalid times")
	}
}
