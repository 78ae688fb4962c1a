package usecases

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"syncalendar/internal/models"
)

var ErrValidation = errors.New("validation failed")

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// EventPayload is the body of POST /events and PUT /events/{id}. The
// startDate/endDate keys are accepted for older clients.
type EventPayload struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	StartDatetime string   `json:"start_datetime"`
	EndDatetime   string   `json:"end_datetime"`
	StartDate     string   `json:"startDate,omitempty"`
	EndDate       string   `json:"endDate,omitempty"`
	Location      string   `json:"location"`
	Color         string   `json:"color"`
	IsAllDay      bool     `json:"is_all_day"`
	IsPublic      *bool    `json:"is_public,omitempty"`
	Participants  []string `json:"participants"`
	Recurrence    string   `json:"recurrence,omitempty"`
}

// ParseTime accepts RFC3339 (with or without fractional seconds), a local
// "2006-01-02T15:04:05" and a bare date. Values without an offset are read in loc.
func ParseTime(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)

	parsedTime, err := time.Parse(time.RFC3339Nano, value)
	if err == nil {
		return parsedTime, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", time.DateOnly} {
		if parsedTime, err = time.ParseInLocation(layout, value, loc); err == nil {
			return parsedTime, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid time format: %q", ErrValidation, value)
}

// ParseEventPayload validates p and returns the event it describes. Owner,
// id and visibility are left for the caller.
func ParseEventPayload(p EventPayload, loc *time.Location) (models.Event, error) {
	if loc == nil {
		loc = time.Local
	}

	event := models.Event{
		Title:       strings.TrimSpace(p.Title),
		Description: strings.TrimSpace(p.Description),
		Location:    strings.TrimSpace(p.Location),
		Color:       strings.TrimSpace(p.Color),
		IsAllDay:    p.IsAllDay,
		Recurrence:  strings.TrimPrefix(strings.TrimSpace(p.Recurrence), "RRULE:"),
	}
	if p.IsPublic != nil {
		event.IsPublic = *p.IsPublic
	}

	if event.Title == "" {
		return models.Event{}, fmt.Errorf("%w: title is required", ErrValidation)
	}

	startRaw := firstNonEmpty(p.StartDatetime, p.StartDate)
	if startRaw == "" {
		return models.Event{}, fmt.Errorf("%w: start_datetime is required", ErrValidation)
	}
	start, err := ParseTime(startRaw, loc)
	if err != nil {
		return models.Event{}, err
	}

	var end time.Time
	if endRaw := firstNonEmpty(p.EndDatetime, p.EndDate); endRaw != "" {
		if end, err = ParseTime(endRaw, loc); err != nil {
			return models.Event{}, err
		}
	}

	if event.IsAllDay {
		y, m, d := start.In(loc).Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, loc)
		if !end.IsZero() {
			y, m, d = end.In(loc).Date()
			end = time.Date(y, m, d, 0, 0, 0, 0, loc)
		}
		if !end.After(start) {
			end = start.AddDate(0, 0, 1)
		}
	} else if end.IsZero() {
		// Default: 1 hour
		end = start.Add(time.Hour)
	} else if !end.After(start) {
		return models.Event{}, fmt.Errorf("%w: end must be after start", ErrValidation)
	}
	event.Start = start
	event.End = end

	if event.Color == "" {
		event.Color = models.DefaultEventColor
	} else if !colorPattern.MatchString(event.Color) {
		return models.Event{}, fmt.Errorf("%w: invalid color %q", ErrValidation, event.Color)
	}

	if event.Recurrence != "" {
		if _, err := rrule.StrToRRule(event.Recurrence); err != nil {
			return models.Event{}, fmt.Errorf("%w: invalid recurrence: %v", ErrValidation, err)
		}
	}

	seen := map[string]bool{}
	event.Participants = []models.Participant{}
	for _, id := range p.Participants {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		event.Participants = append(event.Participants, models.Participant{User: models.User{ID: id}})
	}

	return event, nil
}

// PayloadFromEvent is the inverse of ParseEventPayload, used by clients.
func PayloadFromEvent(e models.Event) EventPayload {
	public := e.IsPublic
	return EventPayload{
		Title:         e.Title,
		Description:   e.Description,
		StartDatetime: e.Start.Format(time.RFC3339),
		EndDatetime:   e.End.Format(time.RFC3339),
		Location:      e.Location,
		Color:         e.Color,
		IsAllDay:      e.IsAllDay,
		IsPublic:      &public,
		Participants:  e.ParticipantIDs(),
		Recurrence:    e.Recurrence,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
