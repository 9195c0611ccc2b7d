package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/traininginparks/trainbot/internal/models"
)

// Client is a read-only Google Calendar client authenticated with a
// service account. It never mutates the source calendar.
type Client struct {
	service    *gcal.Service
	calendarID string
	logger     *slog.Logger
	now        func() time.Time
}

func NewClient(ctx context.Context, logger *slog.Logger, credentialsFile, calendarID string) (*Client, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account credentials: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(data, gcal.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	service, err := gcal.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Client{
		service:    service,
		calendarID: calendarID,
		logger:     logger,
		now:        func() time.Time { return time.Now().In(models.Moscow) },
	}, nil
}

// FetchUpcoming pulls the next limit events strictly ordered by start time,
// with recurring instances already expanded by the provider, and normalizes
// them into the Event shape.
func (c *Client) FetchUpcoming(ctx context.Context, limit int) ([]*models.Event, error) {
	timeMin := c.now().Format(time.RFC3339)

	res, err := c.service.Events.List(c.calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(timeMin).
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events: %w", err)
	}

	events, err := normalizeBatch(res.Items)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Fetched events from calendar", "count", len(events), "calendar_id", c.calendarID)
	return events, nil
}

// normalizeBatch converts raw feed items into validated events. A malformed
// item fails the whole batch so a partial picture is never committed.
func normalizeBatch(items []*gcal.Event) ([]*models.Event, error) {
	events := make([]*models.Event, 0, len(items))
	for _, item := range items {
		event, err := normalize(item)
		if err != nil {
			return nil, fmt.Errorf("malformed event %q: %w", item.Id, err)
		}
		events = append(events, event)
	}
	return events, nil
}

func normalize(item *gcal.Event) (*models.Event, error) {
	if item.Start == nil || item.Start.DateTime == "" {
		return nil, fmt.Errorf("missing start date-time")
	}
	if item.End == nil || item.End.DateTime == "" {
		return nil, fmt.Errorf("missing end date-time")
	}

	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start date-time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return nil, fmt.Errorf("invalid end date-time: %w", err)
	}
	created, err := time.Parse(time.RFC3339, item.Created)
	if err != nil {
		return nil, fmt.Errorf("invalid created timestamp: %w", err)
	}
	updated, err := time.Parse(time.RFC3339, item.Updated)
	if err != nil {
		return nil, fmt.Errorf("invalid updated timestamp: %w", err)
	}

	event := &models.Event{
		ID:       item.Id,
		Summary:  item.Summary,
		Start:    start.In(models.Moscow),
		End:      end.In(models.Moscow),
		Status:   item.Status,
		Sequence: item.Sequence,
		Etag:     item.Etag,
		Created:  created.In(models.Moscow),
		Updated:  updated.In(models.Moscow),
		Kind:     item.Kind,
		ICalUID:  item.ICalUID,
		HTMLLink: item.HtmlLink,
	}
	if item.Organizer != nil {
		event.Organizer = item.Organizer.Email
	}
	if item.Creator != nil {
		event.Creator = item.Creator.Email
	}

	if err := models.Validate.Struct(event); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return event, nil
}
