package ical

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	goical "github.com/emersion/go-ical"

	"syncalendar/internal/models"
)

const productID = "-//syncalendar//EN"

// ErrEmpty is returned when there is nothing to export.
var ErrEmpty = errors.New("no events to export")

// Export writes events as a VCALENDAR. All-day events use DATE values
// taken from the calendar day in loc; timed events are written in UTC.
func Export(w io.Writer, name string, events []models.Event, now time.Time, loc *time.Location) error {
	if len(events) == 0 {
		return ErrEmpty
	}
	if loc == nil {
		loc = time.Local
	}

	cal := goical.NewCalendar()
	cal.Props.SetText(goical.PropVersion, "2.0")
	cal.Props.SetText(goical.PropProductID, productID)
	if name != "" {
		cal.Props.SetText("X-WR-CALNAME", name)
	}

	for i := range events {
		cal.Children = append(cal.Children, toVEvent(&events[i], now, loc).Component)
	}

	var buf bytes.Buffer
	if err := goical.NewEncoder(&buf).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func toVEvent(e *models.Event, now time.Time, loc *time.Location) *goical.Event {
	event := goical.NewEvent()
	event.Props.SetText(goical.PropUID, e.ID+"@syncalendar")
	event.Props.SetDateTime(goical.PropDateTimeStamp, now.UTC())

	if e.IsAllDay {
		event.Props.SetDate(goical.PropDateTimeStart, e.Start.In(loc))
		event.Props.SetDate(goical.PropDateTimeEnd, e.End.In(loc))
	} else {
		event.Props.SetDateTime(goical.PropDateTimeStart, e.Start.UTC())
		event.Props.SetDateTime(goical.PropDateTimeEnd, e.End.UTC())
	}

	event.Props.SetText(goical.PropSummary, e.Title)
	if e.Description != "" {
		event.Props.SetText(goical.PropDescription, e.Description)
	}
	if e.Location != "" {
		event.Props.SetText(goical.PropLocation, e.Location)
	}
	if e.Recurrence != "" {
		rule := goical.NewProp(goical.PropRecurrenceRule)
		rule.Value = e.Recurrence
		event.Props.Set(rule)
	}
	if !e.UpdatedAt.IsZero() {
		event.Props.SetDateTime(goical.PropLastModified, e.UpdatedAt.UTC())
	}

	return event
}
