package gcal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/TWRT/law-office/internal/client"
	"github.com/TWRT/law-office/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// EventIndex remembers which remote event each agenda item was exported to.
type EventIndex interface {
	Get(ctx context.Context, calendarID, sourceID string) (string, error)
	Set(ctx context.Context, calendarID, sourceID, remoteEventID string) error
}

type GcalClient struct {
	srv        *calendar.Service
	calendarID string
	timeZone   string
	index      EventIndex
}

var _ client.CalendarExporter = (*GcalClient)(nil)

// NewGcalClient authenticates with a service account key file.
func NewGcalClient(ctx context.Context, credentialsFile, calendarID, timeZone string) (*GcalClient, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials (gcal): %w", err)
	}
	cfg, err := google.JWTConfigFromJSON(b, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials (gcal): %w", err)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: 10 * time.Second})
	srv, err := calendar.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create service (gcal): %w", err)
	}
	return NewGcalClientWithService(srv, calendarID, timeZone), nil
}

func NewGcalClientWithService(srv *calendar.Service, calendarID, timeZone string) *GcalClient {
	return &GcalClient{srv: srv, calendarID: calendarID, timeZone: timeZone}
}

// WithIndex makes exports look up the local index before searching the calendar.
func (c *GcalClient) WithIndex(idx EventIndex) *GcalClient {
	c.index = idx
	return c
}

// Export upserts every task and event, matching earlier exports by the
// private extended property.
func (c *GcalClient) Export(ctx context.Context, tasks []models.Task, events []models.CalendarEvent) (client.ExportResult, error) {
	var res client.ExportResult
	for _, t := range tasks {
		target, err := taskToEvent(t, c.timeZone)
		if err != nil {
			return res, fmt.Errorf("convert task (gcal): %w", err)
		}
		if err := c.upsert(ctx, taskSourceID(t), target, &res); err != nil {
			return res, err
		}
	}
	for _, e := range events {
		target, err := calendarEventToEvent(e, c.timeZone)
		if err != nil {
			return res, fmt.Errorf("convert event (gcal): %w", err)
		}
		if err := c.upsert(ctx, eventSourceID(e), target, &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (c *GcalClient) upsert(ctx context.Context, sourceID string, target *calendar.Event, res *client.ExportResult) error {
	existing := c.fromIndex(ctx, sourceID)
	if existing == nil {
		var err error
		existing, err = c.findBySource(ctx, sourceID)
		if err != nil {
			return err
		}
	}

	if existing == nil {
		created, err := c.srv.Events.Insert(c.calendarID, target).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("insert event (gcal): %w", err)
		}
		res.Created++
		return c.remember(ctx, sourceID, created.Id)
	}

	patch := needsUpdate(existing, target)
	if patch == nil {
		return c.remember(ctx, sourceID, existing.Id)
	}
	if _, err := c.srv.Events.Patch(c.calendarID, existing.Id, patch).Context(ctx).Do(); err != nil {
		return fmt.Errorf("patch event (gcal): %w", err)
	}
	res.Updated++
	return c.remember(ctx, sourceID, existing.Id)
}

// fromIndex returns nil on any miss; the caller falls back to searching.
func (c *GcalClient) fromIndex(ctx context.Context, sourceID string) *calendar.Event {
	if c.index == nil {
		return nil
	}
	eventID, err := c.index.Get(ctx, c.calendarID, sourceID)
	if err != nil || eventID == "" {
		return nil
	}
	ev, err := c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
	if err != nil || ev.Status == "cancelled" {
		return nil
	}
	return ev
}

func (c *GcalClient) remember(ctx context.Context, sourceID, eventID string) error {
	if c.index == nil {
		return nil
	}
	if err := c.index.Set(ctx, c.calendarID, sourceID, eventID); err != nil {
		return fmt.Errorf("save index (gcal): %w", err)
	}
	return nil
}

func (c *GcalClient) findBySource(ctx context.Context, sourceID string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(sourceKey + "=" + sourceID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("search event (gcal): %w", err)
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}
