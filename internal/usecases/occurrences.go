package usecases

import (
	"fmt"
	"sort"
	"time"

	"syncalendar/internal/calendar"
	"syncalendar/internal/models"
)

// RawOccurrence is an event record as received over the wire, before its
// start has been parsed.
type RawOccurrence struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	StartDatetime string `json:"start_datetime"`
	StartDate     string `json:"startDate,omitempty"`
	Color         string `json:"color"`
}

// NormalizeOccurrences parses raw records. A record that cannot be parsed is
// reported in errs and left out; the rest are still returned.
func NormalizeOccurrences(raw []RawOccurrence, loc *time.Location) ([]calendar.Occurrence, []error) {
	out := make([]calendar.Occurrence, 0, len(raw))
	var errs []error

	for _, r := range raw {
		startRaw := firstNonEmpty(r.StartDatetime, r.StartDate)
		if startRaw == "" {
			errs = append(errs, fmt.Errorf("event %s: %w: missing start", r.ID, ErrValidation))
			continue
		}
		start, err := ParseTime(startRaw, loc)
		if err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", r.ID, err))
			continue
		}
		out = append(out, calendar.Occurrence{ID: r.ID, Title: r.Title, Start: start, Color: r.Color})
	}

	return out, errs
}

// MonthOccurrences lists the occurrences of events that start in m,
// expanding recurring events. Events with an unusable rule are reported in
// errs and placed once at their own start.
func MonthOccurrences(events []models.Event, m calendar.Month, loc *time.Location) ([]calendar.Occurrence, []error) {
	from, to := calendar.MonthRange(m, loc)
	inMonth := func(t time.Time) bool { return !t.Before(from) && t.Before(to) }

	out := []calendar.Occurrence{}
	var errs []error

	for i := range events {
		base := events[i].Occurrence()

		if events[i].Recurrence != "" {
			expanded, err := calendar.ExpandRecurrence(base, events[i].Recurrence, from, to, loc)
			if err == nil {
				out = append(out, expanded...)
				continue
			}
			errs = append(errs, fmt.Errorf("event %s: %w", events[i].ID, err))
		}

		if inMonth(base.Start) {
			out = append(out, base)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, errs
}
