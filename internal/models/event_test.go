package models

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestEventVisibleTo(t *testing.T) {
	t.Parallel()

	ev := Event{
		CreatedBy:    "owner",
		Participants: []Participant{{User: User{ID: "guest"}}},
	}

	tests := []struct {
		name   string
		public bool
		user   string
		want   bool
	}{
		{"owner", false, "owner", true},
		{"participant", false, "guest", true},
		{"stranger private", false, "stranger", false},
		{"stranger public", true, "stranger", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ev
			e.IsPublic = tt.public
			if got := e.VisibleTo(tt.user); got != tt.want {
				t.Fatalf("VisibleTo(%q) = %v, want %v", tt.user, got, tt.want)
			}
		})
	}
}

func TestEventRecipients(t *testing.T) {
	t.Parallel()

	ev := Event{
		CreatedBy: "a",
		Participants: []Participant{
			{User: User{ID: "b"}},
			{User: User{ID: "a"}},
			{User: User{ID: "c"}},
		},
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, ev.Recipients()); diff != "" {
		t.Fatalf("Recipients mismatch (-want +got):\n%s", diff)
	}
}

func TestEventOccurrence(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	ev := Event{ID: "e1", Title: "Lunch", Start: start, Color: "#22c55e"}

	occ := ev.Occurrence()
	if occ.ID != "e1" || occ.Title != "Lunch" || !occ.Start.Equal(start) || occ.Color != "#22c55e" {
		t.Fatalf("unexpected occurrence %+v", occ)
	}
}
