package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"syncalendar/internal/calendar"
	"syncalendar/internal/ical"
	"syncalendar/internal/storage"
	"syncalendar/internal/usecases"
)

const (
	defaultGoogleDays = 7
	maxGoogleDays     = 90
)

type CalendarHandler struct {
	events storage.EventRepository
	mirror EventMirror
	loc    *time.Location
	now    calendar.Clock
	log    *logrus.Entry
}

func NewCalendarHandler(events storage.EventRepository, mirror EventMirror, loc *time.Location, now calendar.Clock, log *logrus.Entry) *CalendarHandler {
	if now == nil {
		now = time.Now
	}
	return &CalendarHandler{events: events, mirror: mirror, loc: loc, now: now, log: log}
}

// monthOccurrences loads the user's events for m. Broken recurrence rules
// are logged and do not fail the request.
func (h *CalendarHandler) monthOccurrences(r *http.Request, m calendar.Month) ([]calendar.Occurrence, error) {
	op := "internal/handlers/calendar.go monthOccurrences"

	from, to := calendar.MonthRange(m, h.loc)
	events, err := h.events.ListEventsRange(r.Context(), currentUser(r).ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	occs, errs := usecases.MonthOccurrences(events, m, h.loc)
	for _, e := range errs {
		h.log.WithField("op", op).WithError(e).Warn("skipping recurrence")
	}
	return occs, nil
}

// GET /calendar/month?year=&month=&selected=&dir=
func (h *CalendarHandler) HandleMonth(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/calendar.go HandleMonth"
	q := r.URL.Query()

	m, ok, err := monthQuery(r)
	if err != nil {
		fail(w, h.log, op, err)
		return
	}
	if !ok {
		m, _ = calendar.Today(func() time.Time { return h.now().In(h.loc) })
	}

	if raw := q.Get("dir"); raw != "" {
		dir, ok := calendar.ParseDirection(raw)
		if !ok {
			fail(w, h.log, op, fmt.Errorf("%w: invalid dir %q", usecases.ErrValidation, raw))
			return
		}
		m = calendar.Step(m, dir)
	}

	selected := 0
	if raw := q.Get("selected"); raw != "" {
		if selected, err = strconv.Atoi(raw); err != nil {
			fail(w, h.log, op, fmt.Errorf("%w: invalid selected %q", usecases.ErrValidation, raw))
			return
		}
	}

	occs, err := h.monthOccurrences(r, m)
	if err != nil {
		fail(w, h.log, op, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, calendar.BuildMonthView(m, occs, h.loc, h.now(), selected))
}

// GET /calendar/today
func (h *CalendarHandler) HandleToday(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/calendar.go HandleToday"

	now := h.now().In(h.loc)
	m, day := calendar.Today(func() time.Time { return now })

	occs, err := h.monthOccurrences(r, m)
	if err != nil {
		fail(w, h.log, op, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, map[string]any{
		"date":   now.Format(time.DateOnly),
		"events": calendar.EventsForDay(occs, day, m.Index, m.Year, h.loc),
	})
}

// GET /calendar.ics
func (h *CalendarHandler) HandleICS(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/calendar.go HandleICS"
	user := currentUser(r)

	events, err := h.events.ListEvents(r.Context(), user.ID)
	if err != nil {
		fail(w, h.log, op, err)
		return
	}

	var buf bytes.Buffer
	if err := ical.Export(&buf, user.Name, events, h.now(), h.loc); err != nil {
		if errors.Is(err, ical.ErrEmpty) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		fail(w, h.log, op, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="syncalendar.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.WithField("op", op).WithError(err).Error("failed to write calendar")
	}
}

type googleEventView struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Location string `json:"location,omitempty"`
	Link     string `json:"link,omitempty"`
}

// GET /calendar/google?days=
func (h *CalendarHandler) HandleGoogle(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/calendar.go HandleGoogle"

	if h.mirror == nil {
		writeError(w, h.log, http.StatusNotFound, "google calendar is not enabled")
		return
	}

	days := defaultGoogleDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d <= 0 || d > maxGoogleDays {
			fail(w, h.log, op, fmt.Errorf("%w: days must be between 1 and %d", usecases.ErrValidation, maxGoogleDays))
			return
		}
		days = d
	}

	items, err := h.mirror.ListEvents(r.Context(), currentUser(r).ID, h.now(), days)
	if err != nil {
		h.log.WithField("op", op).WithError(err).Error("failed to list google events")
		writeError(w, h.log, http.StatusBadGateway, "failed to list google events")
		return
	}

	out := make([]googleEventView, 0, len(items))
	for _, item := range items {
		v := googleEventView{
			ID:       item.Id,
			Summary:  item.Summary,
			Location: item.Location,
			Link:     item.HtmlLink,
		}
		if item.Start != nil {
			v.Start = item.Start.DateTime
			if v.Start == "" {
				v.Start = item.Start.Date
			}
		}
		if item.End != nil {
			v.End = item.End.DateTime
			if v.End == "" {
				v.End = item.End.Date
			}
		}
		out = append(out, v)
	}
	writeJSON(w, h.log, http.StatusOK, map[string]any{"events": out})
}
