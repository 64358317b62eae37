package gcal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/TWRT/law-office/internal/models"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// fakeCalendar stores events keyed by their private source property.
type fakeCalendar struct {
	mu       sync.Mutex
	bySrc    map[string]*calendar.Event
	inserts  int
	patches  int
	searches int
	gets     int
}

func (f *fakeCalendar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/events"):
		f.searches++
		prop := r.URL.Query().Get("privateExtendedProperty")
		items := []*calendar.Event{}
		if ev, ok := f.bySrc[strings.TrimPrefix(prop, sourceKey+"=")]; ok {
			items = append(items, ev)
		}
		json.NewEncoder(w).Encode(calendar.Events{Items: items})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/events"):
		var ev calendar.Event
		json.NewDecoder(r.Body).Decode(&ev)
		f.inserts++
		ev.Id = "g" + strings.Repeat("x", f.inserts)
		f.bySrc[ev.ExtendedProperties.Private[sourceKey]] = &ev
		json.NewEncoder(w).Encode(ev)
	case r.Method == http.MethodGet:
		f.gets++
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		for _, ev := range f.bySrc {
			if ev.Id == id {
				json.NewEncoder(w).Encode(ev)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPatch:
		var ev calendar.Event
		json.NewDecoder(r.Body).Decode(&ev)
		f.patches++
		json.NewEncoder(w).Encode(ev)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, handler http.Handler) *GcalClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	srv, err := calendar.NewService(context.Background(),
		option.WithHTTPClient(ts.Client()),
		option.WithEndpoint(ts.URL+"/"),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return NewGcalClientWithService(srv, "primary", "UTC")
}

func TestExportCreatesThenPatches(t *testing.T) {
	fake := &fakeCalendar{bySrc: map[string]*calendar.Event{}}
	c := newTestClient(t, fake)

	tasks := []models.Task{{ID: "t1", Title: "Plazo", DueDate: models.NewDate(2025, 3, 15), Priority: models.PriorityHigh}}
	events := []models.CalendarEvent{{ID: "e1", Kind: models.EventMeeting, Title: "Reunión", Date: models.NewDate(2025, 3, 12), Time: "09:00", DurationHours: 1}}

	res, err := c.Export(context.Background(), tasks, events)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if res.Created != 2 || res.Updated != 0 {
		t.Fatalf("unexpected first result %+v", res)
	}

	res, err = c.Export(context.Background(), tasks, events)
	if err != nil {
		t.Fatalf("re-export: %v", err)
	}
	if res.Created != 0 || res.Updated != 0 {
		t.Fatalf("expected unchanged items to be skipped, got %+v", res)
	}

	tasks[0].Title = "Plazo: contestar"
	res, err = c.Export(context.Background(), tasks, events)
	if err != nil {
		t.Fatalf("export after change: %v", err)
	}
	if res.Updated != 1 || fake.patches != 1 {
		t.Fatalf("expected one patch, got %+v (%d patches)", res, fake.patches)
	}
}

type mapIndex map[string]string

func (m mapIndex) Get(_ context.Context, calendarID, sourceID string) (string, error) {
	return m[calendarID+"/"+sourceID], nil
}

func (m mapIndex) Set(_ context.Context, calendarID, sourceID, remoteEventID string) error {
	m[calendarID+"/"+sourceID] = remoteEventID
	return nil
}

func TestExportUsesIndexBeforeSearching(t *testing.T) {
	fake := &fakeCalendar{bySrc: map[string]*calendar.Event{}}
	idx := mapIndex{}
	c := newTestClient(t, fake).WithIndex(idx)

	tasks := []models.Task{{ID: "t1", Title: "Plazo", DueDate: models.NewDate(2025, 3, 15)}}
	if _, err := c.Export(context.Background(), tasks, nil); err != nil {
		t.Fatalf("export: %v", err)
	}
	if idx["primary/task:t1"] == "" {
		t.Fatalf("expected the created event to be indexed, got %v", idx)
	}
	searches := fake.searches

	if _, err := c.Export(context.Background(), tasks, nil); err != nil {
		t.Fatalf("re-export: %v", err)
	}
	if fake.searches != searches || fake.gets != 1 {
		t.Fatalf("expected an index hit, got %d searches and %d gets", fake.searches-searches, fake.gets)
	}

	// A stale entry falls back to the property search.
	idx["primary/task:t1"] = "gone"
	res, err := c.Export(context.Background(), tasks, nil)
	if err != nil {
		t.Fatalf("export with stale index: %v", err)
	}
	if res.Created != 0 || fake.searches != searches+1 {
		t.Fatalf("expected a search and no insert, got %+v", res)
	}
	if idx["primary/task:t1"] == "gone" {
		t.Fatal("expected the index to be repaired")
	}
}

func TestExportSurfacesAPIErrors(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"forbidden"}}`))
	}))

	_, err := c.Export(context.Background(), []models.Task{{ID: "t1", Title: "x", DueDate: models.NewDate(2025, 3, 15)}}, nil)
	if err == nil || !strings.Contains(err.Error(), "search event (gcal)") {
		t.Fatalf("expected search error, got %v", err)
	}
}

func TestNewGcalClientMissingFile(t *testing.T) {
	if _, err := NewGcalClient(context.Background(), t.TempDir()+"/missing.json", "primary", "UTC"); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}
