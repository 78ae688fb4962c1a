package storage

import (
	"context"
	"errors"
	"time"

	"golang.org/x/oauth2"

	"syncalendar/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// EventRepository stores events and their participant sets. List methods
// only return events visible to the given user.
type EventRepository interface {
	ListEvents(ctx context.Context, userID string) ([]models.Event, error)
	// ListEventsRange returns events starting in [from, to) plus recurring
	// events that started before to.
	ListEventsRange(ctx context.Context, userID string, from, to time.Time) ([]models.Event, error)
	GetEvent(ctx context.Context, id string) (models.Event, error)
	CreateEvent(ctx context.Context, event *models.Event) error
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id string) error
	SetExternalID(ctx context.Context, id, externalID string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, passwordHash string) error
	GetUser(ctx context.Context, id string) (models.User, error)
	// GetUserByEmail also returns the stored password hash, empty for
	// accounts created through Google sign-in.
	GetUserByEmail(ctx context.Context, email string) (models.User, string, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error)
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	// ListNotifications returns the user's notifications newest first.
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	// DueNotifications returns unread notifications of every user scheduled at or before now.
	DueNotifications(ctx context.Context, now time.Time) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, userID, id string) error
	// DeleteEventNotifications drops the unread notifications of an event.
	DeleteEventNotifications(ctx context.Context, eventID string) error
	ClearNotifications(ctx context.Context, userID string) error
	NotificationSettings(ctx context.Context, userID string) (models.NotificationSettings, error)
	SaveNotificationSettings(ctx context.Context, userID string, s models.NotificationSettings) error
}

type GoogleTokenRepository interface {
	SaveGoogleToken(ctx context.Context, userID string, token *oauth2.Token) error
	GoogleToken(ctx context.Context, userID string) (*oauth2.Token, error)
}

// Store is everything the server needs from a storage backend.
type Store interface {
	EventRepository
	UserRepository
	NotificationRepository
	GoogleTokenRepository
}
