package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"syncalendar/internal/calendar"
	"syncalendar/internal/models"
	"syncalendar/internal/storage"
)

const reminderPrefix = "Reminder: "

// EventLookup loads the event behind a notification.
type EventLookup interface {
	GetEvent(ctx context.Context, id string) (models.Event, error)
}

// Scheduler turns events into stored notifications and delivers them when due.
type Scheduler struct {
	repo            storage.NotificationRepository
	events          EventLookup
	sender          Sender
	defaultReminder int
	loc             *time.Location
	log             *logrus.Entry
	now             func() time.Time
	cron            *cron.Cron
}

// NewScheduler creates a scheduler. defaultReminder applies to users whose
// settings carry no reminder lead time. loc is the zone recurring events
// are expanded in.
func NewScheduler(repo storage.NotificationRepository, events EventLookup, sender Sender, defaultReminder int, loc *time.Location, log *logrus.Entry) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		repo:            repo,
		events:          events,
		sender:          sender,
		defaultReminder: defaultReminder,
		loc:             loc,
		log:             log,
		now:             time.Now,
	}
}

// ScheduleEvent stores a reminder for every recipient of the event whose
// settings allow it. Reminders that would fire in the past are skipped.
// It returns the number of reminders stored.
func (s *Scheduler) ScheduleEvent(ctx context.Context, event models.Event) (int, error) {
	op := "internal/notify/scheduler.go ScheduleEvent"

	now := s.now()
	scheduled := 0

	for _, userID := range event.Recipients() {
		ok, err := s.scheduleFor(ctx, event, userID, now)
		if err != nil {
			return scheduled, fmt.Errorf("%s: %w", op, err)
		}
		if ok {
			scheduled++
		}
	}

	s.log.WithField("op", op).WithField("event_id", event.ID).Debugf("scheduled %d reminders", scheduled)
	return scheduled, nil
}

// scheduleFor stores one reminder for userID for the first instance of
// event starting more than the user's lead time after after.
func (s *Scheduler) scheduleFor(ctx context.Context, event models.Event, userID string, after time.Time) (bool, error) {
	settings, err := s.repo.NotificationSettings(ctx, userID)
	if err != nil {
		return false, err
	}
	if !settings.Enabled {
		return false, nil
	}

	minutes := settings.ReminderMinutes
	if minutes <= 0 {
		minutes = s.defaultReminder
	}
	lead := time.Duration(minutes) * time.Minute

	start, ok := nextStart(event, after.Add(lead), s.loc)
	if !ok {
		return false, nil
	}
	at := start.Add(-lead)
	if !at.After(s.now()) {
		return false, nil
	}

	body := fmt.Sprintf("%s starts in %d minutes", event.Title, minutes)
	if event.Location != "" {
		body += " at " + event.Location
	}
	n := &models.Notification{
		UserID:        userID,
		EventID:       event.ID,
		Title:         reminderPrefix + event.Title,
		Body:          body,
		ScheduledTime: at,
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return false, err
	}
	return true, nil
}

// nextStart is the first start of event strictly after after. Recurring
// events are expanded in loc and looked up a year ahead.
func nextStart(event models.Event, after time.Time, loc *time.Location) (time.Time, bool) {
	if event.Recurrence == "" {
		return event.Start, event.Start.After(after)
	}

	occs, err := calendar.ExpandRecurrence(event.Occurrence(), event.Recurrence, after, after.AddDate(1, 0, 0), loc)
	if err != nil {
		return time.Time{}, false
	}
	for _, o := range occs {
		if o.Start.After(after) {
			return o.Start, true
		}
	}
	return time.Time{}, false
}

// RescheduleEvent replaces the pending reminders of an edited event.
func (s *Scheduler) RescheduleEvent(ctx context.Context, event models.Event) (int, error) {
	if err := s.CancelEvent(ctx, event.ID); err != nil {
		return 0, err
	}
	return s.ScheduleEvent(ctx, event)
}

// CancelEvent drops the pending reminders of an event.
func (s *Scheduler) CancelEvent(ctx context.Context, eventID string) error {
	if err := s.repo.DeleteEventNotifications(ctx, eventID); err != nil {
		return fmt.Errorf("internal/notify/scheduler.go CancelEvent: %w", err)
	}
	return nil
}

// NotifyCreated tells every recipient that the event was created. The
// notification is sent right away and stored as read.
func (s *Scheduler) NotifyCreated(ctx context.Context, event models.Event) error {
	op := "internal/notify/scheduler.go NotifyCreated"

	body := fmt.Sprintf("The event %q was created", event.Title)
	if event.Location != "" {
		body += " at " + event.Location
	}

	for _, userID := range event.Recipients() {
		settings, err := s.repo.NotificationSettings(ctx, userID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !settings.Enabled {
			continue
		}

		n := &models.Notification{
			UserID:        userID,
			EventID:       event.ID,
			Title:         "New event: " + event.Title,
			Body:          body,
			ScheduledTime: s.now(),
		}
		if err := s.repo.CreateNotification(ctx, n); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.deliver(ctx, *n)
	}
	return nil
}

// DispatchDue sends every unread notification whose time has come and
// marks it read. Failed sends stay unread for the next run. After a
// reminder of a recurring event is sent, the next instance is scheduled.
func (s *Scheduler) DispatchDue(ctx context.Context) (int, error) {
	op := "internal/notify/scheduler.go DispatchDue"

	due, err := s.repo.DueNotifications(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	sent := 0
	for _, n := range due {
		if !s.deliver(ctx, n) {
			continue
		}
		sent++
		s.scheduleFollowing(ctx, n)
	}
	return sent, nil
}

// scheduleFollowing queues the reminder for the instance after the one n
// reminded about. Errors are logged only.
func (s *Scheduler) scheduleFollowing(ctx context.Context, n models.Notification) {
	if s.events == nil || n.EventID == "" || !strings.HasPrefix(n.Title, reminderPrefix) {
		return
	}
	log := s.log.WithField("event_id", n.EventID).WithField("user_id", n.UserID)

	event, err := s.events.GetEvent(ctx, n.EventID)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		log.WithError(err).Error("failed to load event for next reminder")
		return
	}
	if event.Recurrence == "" {
		return
	}

	after := n.ScheduledTime
	if now := s.now(); now.After(after) {
		after = now
	}
	if _, err := s.scheduleFor(ctx, event, n.UserID, after); err != nil {
		log.WithError(err).Error("failed to schedule next reminder")
	}
}

func (s *Scheduler) deliver(ctx context.Context, n models.Notification) bool {
	log := s.log.WithField("notification_id", n.ID)

	if err := s.sender.Send(ctx, n); err != nil {
		log.WithError(err).Error("failed to send notification")
		return false
	}
	if err := s.repo.MarkRead(ctx, n.UserID, n.ID); err != nil {
		log.WithError(err).Error("failed to mark notification read")
		return false
	}
	return true
}

// Start runs DispatchDue on the given cron spec until Stop is called.
func (s *Scheduler) Start(spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		sent, err := s.DispatchDue(ctx)
		if err != nil {
			s.log.WithError(err).Error("dispatch failed")
			return
		}
		if sent > 0 {
			s.log.WithField("sent", sent).Info("notifications dispatched")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid notify schedule %q: %w", spec, err)
	}

	s.cron = c
	c.Start()
	return nil
}

// Stop halts the cron runner and waits for a running dispatch to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
