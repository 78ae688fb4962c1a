package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"syncalendar/internal/calendar"
	"syncalendar/internal/models"
	"syncalendar/internal/notify"
	"syncalendar/internal/storage"
	"syncalendar/internal/usecases"
)

type NotificationHandler struct {
	notifications storage.NotificationRepository
	events        storage.EventRepository
	loc           *time.Location
	now           calendar.Clock
	log           *logrus.Entry
}

func NewNotificationHandler(notifications storage.NotificationRepository, events storage.EventRepository, loc *time.Location, now calendar.Clock, log *logrus.Entry) *NotificationHandler {
	if now == nil {
		now = time.Now
	}
	return &NotificationHandler{
		notifications: notifications,
		events:        events,
		loc:           loc,
		now:           now,
		log:           log,
	}
}

// GET /notifications
func (h *NotificationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/notifications.go HandleList"

	list, err := h.notifications.ListNotifications(r.Context(), currentUser(r).ID)
	if err != nil {
		fail(w, h.log, op, err)
		return
	}

	unread := 0
	for _, n := range list {
		if !n.IsRead {
			unread++
		}
	}
	writeJSON(w, h.log, http.StatusOK, map[string]any{
		"notifications": list,
		"unread":        unread,
	})
}

// GET /notifications/feed
func (h *NotificationHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/notifications.go HandleFeed"
	userID := currentUser(r).ID

	now := h.now().In(h.loc)
	month, _ := calendar.Today(func() time.Time { return now })
	months := []calendar.Month{month}
	// tomorrow may already be in the next month
	if next, _ := calendar.Today(func() time.Time { return now.AddDate(0, 0, 1) }); next != month {
		months = append(months, next)
	}

	var occs []calendar.Occurrence
	for _, m := range months {
		from, to := calendar.MonthRange(m, h.loc)
		events, err := h.events.ListEventsRange(r.Context(), userID, from, to)
		if err != nil {
			fail(w, h.log, op, err)
			return
		}
		found, errs := usecases.MonthOccurrences(events, m, h.loc)
		for _, e := range errs {
			h.log.WithField("op", op).WithError(e).Warn("skipping recurrence")
		}
		occs = append(occs, found...)
	}

	writeJSON(w, h.log, http.StatusOK, map[string]any{"items": notify.Feed(occs, now, h.loc)})
}

// POST /notifications/{id}/read
func (h *NotificationHandler) HandleRead(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/notifications.go HandleRead"

	if err := h.notifications.MarkRead(r.Context(), currentUser(r).ID, r.PathValue("id")); err != nil {
		fail(w, h.log, op, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, map[string]string{"status": "read"})
}

// POST /notifications/read-all
func (h *NotificationHandler) HandleReadAll(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/notifications.go HandleReadAll"

	if err := h.notifications.MarkAllRead(r.Context(), currentUser(r).ID); err != nil {
		fail(w, h.log, op, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, map[string]string{"status": "read"})
}

// DELETE /notifications/{id}
func (h *NotificationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/notifications.go HandleDelete"

	if err := h.notifications.DeleteNotification(r.Context(), currentUser(r).ID, r.PathValue("id")); err != nil {
		fail(w, h.log, op, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, map[string]string{"status": "deleted"})
}

// DELETE /notifications
func (h *NotificationHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/notifications.go HandleClear"

	if err := h.notifications.ClearNotifications(r.Context(), currentUser(r).ID); err != nil {
		fail(w, h.log, op, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, map[string]string{"status": "cleared"})
}

// GET /notifications/settings
func (h *NotificationHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/notifications.go HandleGetSettings"

	settings, err := h.notifications.NotificationSettings(r.Context(), currentUser(r).ID)
	if err != nil {
		fail(w, h.log, op, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, settings)
}

// PUT /notifications/settings
func (h *NotificationHandler) HandlePutSettings(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/notifications.go HandlePutSettings"

	var settings models.NotificationSettings
	if err := decodeJSON(w, r, &settings); err != nil {
		fail(w, h.log, op, err)
		return
	}
	if settings.ReminderMinutes < 0 {
		fail(w, h.log, op, fmt.Errorf("%w: reminder_minutes must not be negative", usecases.ErrValidation))
		return
	}

	if err := h.notifications.SaveNotificationSettings(r.Context(), currentUser(r).ID, settings); err != nil {
		fail(w, h.log, op, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, settings)
}
