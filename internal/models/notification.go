package models

import (
	"time"
)

type Notification struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	EventID       string    `json:"event_id,omitempty" db:"event_id"`
	Title         string    `json:"title" db:"title"`
	Body          string    `json:"body" db:"body"`
	ScheduledTime time.Time `json:"scheduled_time" db:"scheduled_time"`
	IsRead        bool      `json:"is_read" db:"is_read"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type NotificationSettings struct {
	Enabled         bool `json:"enabled" db:"enabled"`
	ReminderMinutes int  `json:"reminder_minutes" db:"reminder_minutes"`
	Sound           bool `json:"sound" db:"sound"`
	Vibration       bool `json:"vibration" db:"vibration"`
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Enabled:         true,
		ReminderMinutes: 15,
		Sound:           true,
		Vibration:       true,
	}
}

// FeedItem is one entry of the computed "today" feed.
type FeedItem struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Time    string `json:"time"`
	EventID string `json:"event_id,omitempty"`
}
