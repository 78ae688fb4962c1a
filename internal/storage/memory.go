package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"syncalendar/internal/models"
)

type memoryUser struct {
	user models.User
	hash string
}

// Memory is an in-process Store used when no database is configured and in tests.
type Memory struct {
	mu            sync.RWMutex
	users         map[string]memoryUser
	events        map[string]models.Event
	notifications map[string]models.Notification
	settings      map[string]models.NotificationSettings
	tokens        map[string]oauth2.Token
}

func NewMemory() *Memory {
	return &Memory{
		users:         make(map[string]memoryUser),
		events:        make(map[string]models.Event),
		notifications: make(map[string]models.Notification),
		settings:      make(map[string]models.NotificationSettings),
		tokens:        make(map[string]oauth2.Token),
	}
}

// users

func (m *Memory) CreateUser(ctx context.Context, user *models.User, passwordHash string) error {
	op := "internal/storage/memory.go CreateUser"

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.user.Email, user.Email) {
			return fmt.Errorf("%s: email %s: %w", op, user.Email, ErrConflict)
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	m.users[user.ID] = memoryUser{user: *user, hash: passwordHash}
	return nil
}

func (m *Memory) GetUser(ctx context.Context, id string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return u.user, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (models.User, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if strings.EqualFold(u.user.Email, email) {
			return u.user, u.hash, nil
		}
	}
	return models.User{}, "", fmt.Errorf("user %s: %w", email, ErrNotFound)
}

func (m *Memory) SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	out := []models.User{}
	for _, u := range m.users {
		if strings.Contains(strings.ToLower(u.user.Email), query) {
			out = append(out, u.user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// events

func (m *Memory) ListEvents(ctx context.Context, userID string) ([]models.Event, error) {
	return m.listEvents(userID, func(models.Event) bool { return true }), nil
}

func (m *Memory) ListEventsRange(ctx context.Context, userID string, from, to time.Time) ([]models.Event, error) {
	return m.listEvents(userID, func(e models.Event) bool {
		if !e.Start.Before(to) {
			return false
		}
		return e.Recurrence != "" || !e.Start.Before(from)
	}), nil
}

func (m *Memory) listEvents(userID string, keep func(models.Event) bool) []models.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Event{}
	for _, e := range m.events {
		if !e.VisibleTo(userID) || !keep(e) {
			continue
		}
		out = append(out, m.resolve(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// resolve copies e and fills participant users from the user table.
func (m *Memory) resolve(e models.Event) models.Event {
	parts := make([]models.Participant, 0, len(e.Participants))
	for _, p := range e.Participants {
		if u, ok := m.users[p.User.ID]; ok {
			parts = append(parts, models.Participant{User: u.user})
		}
	}
	e.Participants = parts
	return e
}

func (m *Memory) GetEvent(ctx context.Context, id string) (models.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.events[id]
	if !ok {
		return models.Event{}, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return m.resolve(e), nil
}

func (m *Memory) CreateEvent(ctx context.Context, event *models.Event) error {
	op := "internal/storage/memory.go CreateEvent"

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkParticipants(event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if _, ok := m.events[event.ID]; ok {
		return fmt.Errorf("%s: event %s: %w", op, event.ID, ErrConflict)
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	m.events[event.ID] = storedEvent(*event)
	return nil
}

func (m *Memory) UpdateEvent(ctx context.Context, event *models.Event) error {
	op := "internal/storage/memory.go UpdateEvent"

	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.events[event.ID]
	if !ok {
		return fmt.Errorf("%s: event %s: %w", op, event.ID, ErrNotFound)
	}
	if err := m.checkParticipants(event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	event.CreatedBy = old.CreatedBy
	event.CreatedAt = old.CreatedAt
	event.UpdatedAt = time.Now().UTC()
	if event.ExternalID == "" {
		event.ExternalID = old.ExternalID
	}
	m.events[event.ID] = storedEvent(*event)
	return nil
}

func (m *Memory) checkParticipants(event *models.Event) error {
	for _, id := range event.ParticipantIDs() {
		if _, ok := m.users[id]; !ok {
			return fmt.Errorf("participant %s: %w", id, ErrNotFound)
		}
	}
	return nil
}

// storedEvent keeps only participant ids so that user changes show up on read.
func storedEvent(e models.Event) models.Event {
	ids := e.ParticipantIDs()
	e.Participants = make([]models.Participant, 0, len(ids))
	for _, id := range ids {
		e.Participants = append(e.Participants, models.Participant{User: models.User{ID: id}})
	}
	return e
}

func (m *Memory) DeleteEvent(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[id]; !ok {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	delete(m.events, id)
	return nil
}

func (m *Memory) SetExternalID(ctx context.Context, id, externalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[id]
	if !ok {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	e.ExternalID = externalID
	m.events[id] = e
	return nil
}

// notifications

func (m *Memory) CreateNotification(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	m.notifications[n.ID] = *n
	return nil
}

func (m *Memory) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Notification{}
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ScheduledTime.After(out[j].ScheduledTime)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) DueNotifications(ctx context.Context, now time.Time) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Notification{}
	for _, n := range m.notifications {
		if !n.IsRead && !n.ScheduledTime.After(now) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledTime.Before(out[j].ScheduledTime) })
	return out, nil
}

func (m *Memory) MarkRead(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	n.IsRead = true
	m.notifications[id] = n
	return nil
}

func (m *Memory) MarkAllRead(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, n := range m.notifications {
		if n.UserID == userID {
			n.IsRead = true
			m.notifications[id] = n
		}
	}
	return nil
}

func (m *Memory) DeleteNotification(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	delete(m.notifications, id)
	return nil
}

func (m *Memory) DeleteEventNotifications(ctx context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, n := range m.notifications {
		if n.EventID == eventID && !n.IsRead {
			delete(m.notifications, id)
		}
	}
	return nil
}

func (m *Memory) ClearNotifications(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, n := range m.notifications {
		if n.UserID == userID {
			delete(m.notifications, id)
		}
	}
	return nil
}

func (m *Memory) NotificationSettings(ctx context.Context, userID string) (models.NotificationSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.settings[userID]; ok {
		return s, nil
	}
	return models.DefaultNotificationSettings(), nil
}

func (m *Memory) SaveNotificationSettings(ctx context.Context, userID string, s models.NotificationSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings[userID] = s
	return nil
}

// google tokens

func (m *Memory) SaveGoogleToken(ctx context.Context, userID string, token *oauth2.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[userID] = *token
	return nil
}

func (m *Memory) GoogleToken(ctx context.Context, userID string) (*oauth2.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tok, ok := m.tokens[userID]
	if !ok {
		return nil, fmt.Errorf("google token for %s: %w", userID, ErrNotFound)
	}
	return &tok, nil
}
