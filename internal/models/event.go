package models

import (
	"time"

	"syncalendar/internal/calendar"
)

// DefaultEventColor is used when an event is saved without a colour.
const DefaultEventColor = calendar.DefaultColor

// EventColors is the palette offered when creating an event.
var EventColors = []string{
	"#ef4444",
	"#f97316",
	"#eab308",
	"#22c55e",
	"#06b6d4",
	"#3b82f6",
	"#8b5cf6",
	"#ec4899",
}

type Participant struct {
	User User `json:"user"`
}

type Event struct {
	ID           string        `json:"id" db:"id"`
	Title        string        `json:"title" db:"title"`
	Description  string        `json:"description,omitempty" db:"description"`
	Start        time.Time     `json:"start_datetime" db:"start_datetime"`
	End          time.Time     `json:"end_datetime" db:"end_datetime"`
	Location     string        `json:"location,omitempty" db:"location"`
	Color        string        `json:"color" db:"color"`
	IsAllDay     bool          `json:"is_all_day" db:"is_all_day"`
	IsPublic     bool          `json:"is_public" db:"is_public"`
	CreatedBy    string        `json:"created_by" db:"created_by"`
	Participants []Participant `json:"participants"`
	Recurrence   string        `json:"recurrence,omitempty" db:"recurrence"`
	ExternalID   string        `json:"external_id,omitempty" db:"external_id"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// VisibleTo reports whether userID may see the event: public events,
// the creator's own events and events the user takes part in.
func (e *Event) VisibleTo(userID string) bool {
	if e.IsPublic || e.CreatedBy == userID {
		return true
	}
	return e.HasParticipant(userID)
}

func (e *Event) HasParticipant(userID string) bool {
	for _, p := range e.Participants {
		if p.User.ID == userID {
			return true
		}
	}
	return false
}

// ParticipantIDs returns the ids of all participants in order.
func (e *Event) ParticipantIDs() []string {
	ids := make([]string, 0, len(e.Participants))
	for _, p := range e.Participants {
		ids = append(ids, p.User.ID)
	}
	return ids
}

// Recipients returns the creator followed by every participant, without duplicates.
func (e *Event) Recipients() []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(e.Participants)+1)
	for _, id := range append([]string{e.CreatedBy}, e.ParticipantIDs()...) {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (e *Event) Occurrence() calendar.Occurrence {
	return calendar.Occurrence{
		ID:    e.ID,
		Title: e.Title,
		Start: e.Start,
		Color: e.Color,
	}
}
