package notify

import (
	"fmt"
	"math"
	"time"

	"syncalendar/internal/calendar"
	"syncalendar/internal/models"
)

const (
	FeedReminder   = "reminder"
	FeedInProgress = "in_progress"
	FeedTomorrow   = "tomorrow"
	FeedFree       = "free"

	reminderMinutes   = 60
	inProgressMinutes = 120
)

// Feed builds the "today" panel: reminders for events starting within the
// hour, events started in the last two hours, a count for tomorrow, or a
// single free-day item.
func Feed(occs []calendar.Occurrence, now time.Time, loc *time.Location) []models.FeedItem {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	items := []models.FeedItem{}

	y, m, d := now.Date()
	for _, o := range calendar.EventsForDay(occs, d, int(m)-1, y, loc) {
		minutes := int(math.Floor(o.Start.Sub(now).Minutes()))
		at := o.Start.In(loc).Format("15:04")

		switch {
		case minutes > 0 && minutes <= reminderMinutes:
			items = append(items, models.FeedItem{
				Kind:    FeedReminder,
				Title:   "Reminder",
				Message: fmt.Sprintf("%s in %d min", o.Title, minutes),
				Time:    at,
				EventID: o.ID,
			})
		case minutes <= 0 && minutes > -inProgressMinutes:
			items = append(items, models.FeedItem{
				Kind:    FeedInProgress,
				Title:   "In progress",
				Message: o.Title + " is in progress",
				Time:    at,
				EventID: o.ID,
			})
		}
	}

	ty, tm, td := now.AddDate(0, 0, 1).Date()
	if n := len(calendar.EventsForDay(occs, td, int(tm)-1, ty, loc)); n > 0 {
		items = append(items, models.FeedItem{
			Kind:    FeedTomorrow,
			Title:   "Tomorrow",
			Message: fmt.Sprintf("%d event(s) planned", n),
			Time:    "Preparation",
		})
	}

	if len(items) == 0 {
		items = append(items, models.FeedItem{
			Kind:    FeedFree,
			Title:   "No events",
			Message: "No events planned today",
			Time:    "Free day",
		})
	}

	return items
}
