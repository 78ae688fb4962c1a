package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/oauth2"

	"syncalendar/internal/models"
)

var _ Store = (*Memory)(nil)

func seedUsers(t *testing.T, m *Memory, emails ...string) []models.User {
	t.Helper()

	users := make([]models.User, 0, len(emails))
	for _, email := range emails {
		u := models.User{Email: email, Name: email}
		if err := m.CreateUser(context.Background(), &u, "hash-"+email); err != nil {
			t.Fatalf("CreateUser(%s): %v", email, err)
		}
		users = append(users, u)
	}
	return users
}

func TestMemoryUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()
	users := seedUsers(t, m, "alice@example.com", "bob@example.com", "carol@sample.org")

	dup := models.User{Email: "ALICE@example.com"}
	if err := m.CreateUser(ctx, &dup, ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}

	got, hash, err := m.GetUserByEmail(ctx, "Bob@Example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != users[1].ID || hash != "hash-bob@example.com" {
		t.Fatalf("unexpected user %+v hash %q", got, hash)
	}

	if _, err := m.GetUser(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	found, err := m.SearchUsers(ctx, "example", 10)
	if err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	if diff := cmp.Diff([]models.User{users[0], users[1]}, found); diff != "" {
		t.Fatalf("SearchUsers mismatch (-want +got):\n%s", diff)
	}

	limited, _ := m.SearchUsers(ctx, "", 1)
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d users", len(limited))
	}
}

func TestMemoryEventsVisibilityAndParticipants(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()
	users := seedUsers(t, m, "owner@example.com", "guest@example.com", "other@example.com")
	owner, guest, other := users[0], users[1], users[2]

	start := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	private := models.Event{
		Title:        "Planning",
		Start:        start,
		End:          start.Add(time.Hour),
		CreatedBy:    owner.ID,
		Participants: []models.Participant{{User: models.User{ID: guest.ID}}},
	}
	if err := m.CreateEvent(ctx, &private); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if private.ID == "" || private.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamps to be assigned: %+v", private)
	}

	public := models.Event{Title: "Party", Start: start.Add(24 * time.Hour), CreatedBy: other.ID, IsPublic: true}
	if err := m.CreateEvent(ctx, &public); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	for _, tt := range []struct {
		user string
		want []string
	}{
		{owner.ID, []string{private.ID, public.ID}},
		{guest.ID, []string{private.ID, public.ID}},
		{other.ID, []string{public.ID}},
	} {
		events, err := m.ListEvents(ctx, tt.user)
		if err != nil {
			t.Fatalf("ListEvents: %v", err)
		}
		got := make([]string, 0, len(events))
		for _, e := range events {
			got = append(got, e.ID)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("ListEvents(%s) mismatch (-want +got):\n%s", tt.user, diff)
		}
	}

	detail, err := m.GetEvent(ctx, private.ID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if len(detail.Participants) != 1 || detail.Participants[0].User != guest {
		t.Fatalf("expected resolved participant, got %+v", detail.Participants)
	}

	bad := models.Event{Title: "x", Start: start, CreatedBy: owner.ID, Participants: []models.Participant{{User: models.User{ID: "ghost"}}}}
	if err := m.CreateEvent(ctx, &bad); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown participant, got %v", err)
	}
}

func TestMemoryEventUpdateDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()
	owner := seedUsers(t, m, "owner@example.com")[0]

	ev := models.Event{Title: "Draft", Start: time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC), CreatedBy: owner.ID}
	if err := m.CreateEvent(ctx, &ev); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if err := m.SetExternalID(ctx, ev.ID, "google-1"); err != nil {
		t.Fatalf("SetExternalID: %v", err)
	}

	upd := models.Event{ID: ev.ID, Title: "Final", Start: ev.Start, CreatedBy: "someone-else"}
	if err := m.UpdateEvent(ctx, &upd); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	got, _ := m.GetEvent(ctx, ev.ID)
	if got.Title != "Final" || got.CreatedBy != owner.ID || got.ExternalID != "google-1" {
		t.Fatalf("unexpected event after update: %+v", got)
	}

	if err := m.DeleteEvent(ctx, ev.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if err := m.DeleteEvent(ctx, ev.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if err := m.UpdateEvent(ctx, &upd); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update of deleted event, got %v", err)
	}
}

func TestMemoryListEventsRange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()
	owner := seedUsers(t, m, "owner@example.com")[0]

	mk := func(title string, start time.Time, rule string) {
		ev := models.Event{Title: title, Start: start, CreatedBy: owner.ID, Recurrence: rule}
		if err := m.CreateEvent(ctx, &ev); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}
	mk("before", time.Date(2024, time.January, 31, 23, 0, 0, 0, time.UTC), "")
	mk("inside", time.Date(2024, time.February, 14, 9, 0, 0, 0, time.UTC), "")
	mk("weekly", time.Date(2023, time.December, 1, 9, 0, 0, 0, time.UTC), "FREQ=WEEKLY")
	mk("after", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), "")

	from := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	events, err := m.ListEventsRange(ctx, owner.ID, from, from.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("ListEventsRange: %v", err)
	}
	got := []string{}
	for _, e := range events {
		got = append(got, e.Title)
	}
	if diff := cmp.Diff([]string{"weekly", "inside"}, got); diff != "" {
		t.Fatalf("ListEventsRange mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryNotifications(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()
	base := time.Date(2024, time.April, 1, 12, 0, 0, 0, time.UTC)

	add := func(user, event string, at time.Time) models.Notification {
		n := models.Notification{UserID: user, EventID: event, Title: "t", ScheduledTime: at}
		if err := m.CreateNotification(ctx, &n); err != nil {
			t.Fatalf("CreateNotification: %v", err)
		}
		return n
	}
	early := add("u1", "e1", base.Add(-time.Hour))
	late := add("u1", "e2", base.Add(time.Hour))
	other := add("u2", "e1", base.Add(-2*time.Hour))

	list, _ := m.ListNotifications(ctx, "u1")
	if len(list) != 2 || list[0].ID != late.ID || list[1].ID != early.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}

	due, _ := m.DueNotifications(ctx, base)
	if len(due) != 2 || due[0].ID != other.ID || due[1].ID != early.ID {
		t.Fatalf("unexpected due notifications %+v", due)
	}

	if err := m.MarkRead(ctx, "u2", early.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound when marking another user's notification, got %v", err)
	}
	if err := m.MarkRead(ctx, "u1", early.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	due, _ = m.DueNotifications(ctx, base)
	if len(due) != 1 {
		t.Fatalf("expected read notification to stop being due, got %d", len(due))
	}

	if err := m.DeleteEventNotifications(ctx, "e1"); err != nil {
		t.Fatalf("DeleteEventNotifications: %v", err)
	}
	if list, _ := m.ListNotifications(ctx, "u2"); len(list) != 0 {
		t.Fatalf("expected pending notification of e1 to be dropped, got %+v", list)
	}
	if list, _ := m.ListNotifications(ctx, "u1"); len(list) != 2 {
		t.Fatalf("expected read notification to survive, got %d", len(list))
	}

	if err := m.MarkAllRead(ctx, "u1"); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if err := m.ClearNotifications(ctx, "u1"); err != nil {
		t.Fatalf("ClearNotifications: %v", err)
	}
	if list, _ := m.ListNotifications(ctx, "u1"); len(list) != 0 {
		t.Fatalf("expected empty list after clear, got %d", len(list))
	}
}

func TestMemorySettingsAndTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()

	s, err := m.NotificationSettings(ctx, "u1")
	if err != nil {
		t.Fatalf("NotificationSettings: %v", err)
	}
	if diff := cmp.Diff(models.DefaultNotificationSettings(), s); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}

	custom := models.NotificationSettings{Enabled: false, ReminderMinutes: 30}
	if err := m.SaveNotificationSettings(ctx, "u1", custom); err != nil {
		t.Fatalf("SaveNotificationSettings: %v", err)
	}
	if s, _ := m.NotificationSettings(ctx, "u1"); s != custom {
		t.Fatalf("expected saved settings, got %+v", s)
	}

	if _, err := m.GoogleToken(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := m.SaveGoogleToken(ctx, "u1", &oauth2.Token{AccessToken: "abc"}); err != nil {
		t.Fatalf("SaveGoogleToken: %v", err)
	}
	tok, err := m.GoogleToken(ctx, "u1")
	if err != nil || tok.AccessToken != "abc" {
		t.Fatalf("unexpected token %+v err %v", tok, err)
	}
}
