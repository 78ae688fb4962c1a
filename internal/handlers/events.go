package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	gcalendar "google.golang.org/api/calendar/v3"

	"syncalendar/internal/calendar"
	"syncalendar/internal/models"
	"syncalendar/internal/notify"
	"syncalendar/internal/storage"
	"syncalendar/internal/usecases"
)

// EventMirror copies events to an external calendar.
type EventMirror interface {
	Mirror(ctx context.Context, event *models.Event) (string, error)
	Remove(ctx context.Context, event models.Event) error
	ListEvents(ctx context.Context, userID string, now time.Time, days int) ([]*gcalendar.Event, error)
}

type EventHandler struct {
	events    storage.EventRepository
	scheduler *notify.Scheduler
	mirror    EventMirror
	loc       *time.Location
	log       *logrus.Entry
}

func NewEventHandler(events storage.EventRepository, scheduler *notify.Scheduler, mirror EventMirror, loc *time.Location, log *logrus.Entry) *EventHandler {
	return &EventHandler{
		events:    events,
		scheduler: scheduler,
		mirror:    mirror,
		loc:       loc,
		log:       log,
	}
}

// monthQuery reads ?year=&month= (month is 0-based). ok is false when
// neither is given.
func monthQuery(r *http.Request) (m calendar.Month, ok bool, err error) {
	q := r.URL.Query()
	if q.Get("year") == "" && q.Get("month") == "" {
		return calendar.Month{}, false, nil
	}

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		return calendar.Month{}, false, fmt.Errorf("%w: invalid year %q", usecases.ErrValidation, q.Get("year"))
	}
	idx, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		return calendar.Month{}, false, fmt.Errorf("%w: invalid month %q", usecases.ErrValidation, q.Get("month"))
	}
	if err := calendar.ValidateMonth(year, idx); err != nil {
		return calendar.Month{}, false, fmt.Errorf("%w: %v", usecases.ErrValidation, err)
	}
	return calendar.Month{Year: year, Index: idx}, true, nil
}

// GET /events[?year=&month=]
func (h *EventHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/events.go HandleList"
	user := currentUser(r)

	m, byMonth, err := monthQuery(r)
	if err != nil {
		fail(w, h.log, op, err)
		return
	}

	var events []models.Event
	if byMonth {
		from, to := calendar.MonthRange(m, h.loc)
		events, err = h.events.ListEventsRange(r.Context(), user.ID, from, to)
	} else {
		events, err = h.events.ListEvents(r.Context(), user.ID)
	}
	if err != nil {
		fail(w, h.log, op, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, map[string]any{"events": events})
}

// GET /events/{id}
func (h *EventHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/events.go HandleGet"

	event, err := h.visibleEvent(r)
	if err != nil {
		fail(w, h.log, op, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, event)
}

func (h *EventHandler) visibleEvent(r *http.Request) (models.Event, error) {
	event, err := h.events.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		return models.Event{}, err
	}
	if !event.VisibleTo(currentUser(r).ID) {
		return models.Event{}, fmt.Errorf("event %s: %w", event.ID, storage.ErrNotFound)
	}
	return event, nil
}

// ownedEvent loads the event and checks the current user created it.
func (h *EventHandler) ownedEvent(r *http.Request) (models.Event, error) {
	event, err := h.visibleEvent(r)
	if err != nil {
		return models.Event{}, err
	}
	if event.CreatedBy != currentUser(r).ID {
		return models.Event{}, fmt.Errorf("only the creator may change this event: %w", errForbidden)
	}
	return event, nil
}

// POST /events
func (h *EventHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/events.go HandleCreate"
	ctx := r.Context()

	var payload usecases.EventPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		fail(w, h.log, op, err)
		return
	}

	event, err := usecases.ParseEventPayload(payload, h.loc)
	if err != nil {
		fail(w, h.log, op, err)
		return
	}
	if payload.IsPublic == nil {
		event.IsPublic = true
	}
	event.CreatedBy = currentUser(r).ID

	if err := h.events.CreateEvent(ctx, &event); err != nil {
		fail(w, h.log, op, participantError(err))
		return
	}

	saved, err := h.events.GetEvent(ctx, event.ID)
	if err != nil {
		fail(w, h.log, op, err)
		return
	}

	if _, err := h.scheduler.ScheduleEvent(ctx, saved); err != nil {
		h.log.WithField("op", op).WithError(err).Error("failed to schedule reminders")
	}
	if err := h.scheduler.NotifyCreated(ctx, saved); err != nil {
		h.log.WithField("op", op).WithError(err).Error("failed to send creation notice")
	}
	h.mirrorEvent(ctx, op, &saved)

	writeJSON(w, h.log, http.StatusCreated, saved)
}

// PUT /events/{id}
func (h *EventHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/events.go HandleUpdate"
	ctx := r.Context()

	existing, err := h.ownedEvent(r)
	if err != nil {
		fail(w, h.log, op, err)
		return
	}

	var payload usecases.EventPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		fail(w, h.log, op, err)
		return
	}

	event, err := usecases.ParseEventPayload(payload, h.loc)
	if err != nil {
		fail(w, h.log, op, err)
		return
	}
	event.ID = existing.ID
	if payload.IsPublic == nil {
		event.IsPublic = existing.IsPublic
	}

	if err := h.events.UpdateEvent(ctx, &event); err != nil {
		fail(w, h.log, op, participantError(err))
		return
	}

	saved, err := h.events.GetEvent(ctx, event.ID)
	if err != nil {
		fail(w, h.log, op, err)
		return
	}

	if _, err := h.scheduler.RescheduleEvent(ctx, saved); err != nil {
		h.log.WithField("op", op).WithError(err).Error("failed to reschedule reminders")
	}
	h.mirrorEvent(ctx, op, &saved)

	writeJSON(w, h.log, http.StatusOK, saved)
}

// DELETE /events/{id}
func (h *EventHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/events.go HandleDelete"
	ctx := r.Context()

	event, err := h.ownedEvent(r)
	if err != nil {
		fail(w, h.log, op, err)
		return
	}

	if err := h.events.DeleteEvent(ctx, event.ID); err != nil {
		fail(w, h.log, op, err)
		return
	}
	if err := h.scheduler.CancelEvent(ctx, event.ID); err != nil {
		h.log.WithField("op", op).WithError(err).Error("failed to cancel reminders")
	}
	if h.mirror != nil {
		if err := h.mirror.Remove(ctx, event); err != nil {
			h.log.WithField("op", op).WithError(err).Warn("failed to remove mirrored event")
		}
	}

	writeJSON(w, h.log, http.StatusOK, map[string]string{
		"status":  "deleted",
		"message": "Event deleted successfully",
	})
}

// mirrorEvent copies the event to Google. Failures are logged only.
func (h *EventHandler) mirrorEvent(ctx context.Context, op string, event *models.Event) {
	if h.mirror == nil {
		return
	}

	externalID, err := h.mirror.Mirror(ctx, event)
	if err != nil {
		h.log.WithField("op", op).WithError(err).Warn("failed to mirror event to google calendar")
		return
	}
	if externalID == "" || externalID == event.ExternalID {
		return
	}
	if err := h.events.SetExternalID(ctx, event.ID, externalID); err != nil {
		h.log.WithField("op", op).WithError(err).Error("failed to save google event id")
		return
	}
	event.ExternalID = externalID
}

// participantError reports unknown participants as a bad request.
func participantError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: unknown participant: %v", usecases.ErrValidation, err)
	}
	return err
}
