package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"syncalendar/internal/models"
)

const primaryCalendar = "primary"

// GoogleCalendarStorage mirrors events into the creator's primary Google
// calendar using the token saved at Google sign-in.
type GoogleCalendarStorage struct {
	config   *oauth2.Config
	tokens   GoogleTokenRepository
	loc      *time.Location
	endpoint string
}

// NewGoogleCalendarStorage builds the mirror. endpoint overrides the API
// base URL and is empty in production.
func NewGoogleCalendarStorage(config *oauth2.Config, tokens GoogleTokenRepository, loc *time.Location, endpoint string) *GoogleCalendarStorage {
	if loc == nil {
		loc = time.Local
	}
	return &GoogleCalendarStorage{
		config:   config,
		tokens:   tokens,
		loc:      loc,
		endpoint: endpoint,
	}
}

// IsAuthorized reports whether the user has a stored Google token.
func (gcs *GoogleCalendarStorage) IsAuthorized(ctx context.Context, userID string) bool {
	_, err := gcs.tokens.GoogleToken(ctx, userID)
	return err == nil
}

func (gcs *GoogleCalendarStorage) service(ctx context.Context, userID string) (*calendar.Service, error) {
	tok, err := gcs.tokens.GoogleToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	opts := []option.ClientOption{option.WithHTTPClient(gcs.config.Client(ctx, tok))}
	if gcs.endpoint != "" {
		opts = append(opts, option.WithEndpoint(gcs.endpoint))
	}

	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return service, nil
}

// Mirror inserts or updates the event in the creator's calendar and returns
// the Google event id. Users without a Google token are skipped with an
// empty id.
func (gcs *GoogleCalendarStorage) Mirror(ctx context.Context, event *models.Event) (string, error) {
	op := "internal/storage/google_calendar.go Mirror"

	service, err := gcs.service(ctx, event.CreatedBy)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	googleEvent := gcs.toGoogleEvent(event)

	var saved *calendar.Event
	if event.ExternalID != "" {
		saved, err = service.Events.Update(primaryCalendar, event.ExternalID, googleEvent).Context(ctx).Do()
	} else {
		saved, err = service.Events.Insert(primaryCalendar, googleEvent).Context(ctx).Do()
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return saved.Id, nil
}

// Remove deletes the mirrored copy of event, if there is one.
func (gcs *GoogleCalendarStorage) Remove(ctx context.Context, event models.Event) error {
	op := "internal/storage/google_calendar.go Remove"

	if event.ExternalID == "" {
		return nil
	}

	service, err := gcs.service(ctx, event.CreatedBy)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := service.Events.Delete(primaryCalendar, event.ExternalID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListEvents returns the user's Google events in the next days days.
func (gcs *GoogleCalendarStorage) ListEvents(ctx context.Context, userID string, now time.Time, days int) ([]*calendar.Event, error) {
	op := "internal/storage/google_calendar.go ListEvents"

	service, err := gcs.service(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	events, err := service.Events.List(primaryCalendar).
		TimeMin(now.Format(time.RFC3339)).
		TimeMax(now.AddDate(0, 0, days).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list events: %w", op, err)
	}

	return events.Items, nil
}

// timeZone is the IANA name sent to Google, empty for the process-local zone.
func (gcs *GoogleCalendarStorage) timeZone() string {
	if gcs.loc == time.Local {
		return ""
	}
	return gcs.loc.String()
}

func (gcs *GoogleCalendarStorage) toGoogleEvent(event *models.Event) *calendar.Event {
	googleEvent := &calendar.Event{
		Summary:     event.Title,
		Description: event.Description,
		Location:    event.Location,
	}

	if event.IsAllDay {
		end := event.End
		if !end.After(event.Start) {
			end = event.Start.AddDate(0, 0, 1)
		}
		googleEvent.Start = &calendar.EventDateTime{Date: event.Start.In(gcs.loc).Format(time.DateOnly)}
		googleEvent.End = &calendar.EventDateTime{Date: end.In(gcs.loc).Format(time.DateOnly)}
	} else {
		end := event.End
		if !end.After(event.Start) {
			// Default: 1 hour
			end = event.Start.Add(time.Hour)
		}
		googleEvent.Start = &calendar.EventDateTime{
			DateTime: event.Start.In(gcs.loc).Format(time.RFC3339),
			TimeZone: gcs.timeZone(),
		}
		googleEvent.End = &calendar.EventDateTime{
			DateTime: end.In(gcs.loc).Format(time.RFC3339),
			TimeZone: gcs.timeZone(),
		}
	}

	if event.Recurrence != "" {
		rule := event.Recurrence
		if !strings.HasPrefix(rule, "RRULE:") {
			rule = "RRULE:" + rule
		}
		googleEvent.Recurrence = []string{rule}
	}

	for _, p := range event.Participants {
		if p.User.Email == "" {
			continue
		}
		googleEvent.Attendees = append(googleEvent.Attendees, &calendar.EventAttendee{
			Email:       p.User.Email,
			DisplayName: p.User.Name,
		})
	}

	return googleEvent
}
