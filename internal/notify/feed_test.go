package notify

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"syncalendar/internal/calendar"
	"syncalendar/internal/models"
)

func kinds(items []models.FeedItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Kind)
	}
	return out
}

func TestFeed(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) time.Time { return now.Add(d) }

	tests := []struct {
		name string
		occs []calendar.Occurrence
		want []string
	}{
		{
			name: "nothing",
			want: []string{FeedFree},
		},
		{
			name: "soon and running",
			occs: []calendar.Occurrence{
				{ID: "soon", Title: "Soon", Start: at(30 * time.Minute)},
				{ID: "running", Title: "Running", Start: at(-90 * time.Minute)},
				{ID: "later", Title: "Later", Start: at(5 * time.Hour)},
				{ID: "long-ago", Title: "Morning", Start: at(-3 * time.Hour)},
			},
			want: []string{FeedReminder, FeedInProgress},
		},
		{
			name: "tomorrow only",
			occs: []calendar.Occurrence{
				{ID: "t1", Start: time.Date(2024, time.June, 11, 9, 0, 0, 0, time.UTC)},
				{ID: "t2", Start: time.Date(2024, time.June, 11, 18, 0, 0, 0, time.UTC)},
			},
			want: []string{FeedTomorrow},
		},
		{
			name: "later today only",
			occs: []calendar.Occurrence{{ID: "x", Start: at(3 * time.Hour)}},
			want: []string{FeedFree},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Feed(tt.occs, now, time.UTC)
			if diff := cmp.Diff(tt.want, kinds(got)); diff != "" {
				t.Fatalf("Feed kinds mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFeedMessages(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	occs := []calendar.Occurrence{
		{ID: "a", Title: "Standup", Start: now.Add(15 * time.Minute)},
		{ID: "b", Start: time.Date(2024, time.June, 11, 9, 0, 0, 0, time.UTC)},
	}

	want := []models.FeedItem{
		{Kind: FeedReminder, Title: "Reminder", Message: "Standup in 15 min", Time: "12:15", EventID: "a"},
		{Kind: FeedTomorrow, Title: "Tomorrow", Message: "1 event(s) planned", Time: "Preparation"},
	}
	if diff := cmp.Diff(want, Feed(occs, now, time.UTC)); diff != "" {
		t.Fatalf("Feed mismatch (-want +got):\n%s", diff)
	}
}

func TestFeedTomorrowCrossesMonth(t *testing.T) {
	t.Parallel()

	// The next day of June 30th is July 1st, not June 31st.
	now := time.Date(2024, time.June, 30, 20, 0, 0, 0, time.UTC)
	occs := []calendar.Occurrence{
		{ID: "july", Start: time.Date(2024, time.July, 1, 9, 0, 0, 0, time.UTC)},
	}

	got := Feed(occs, now, time.UTC)
	if len(got) != 1 || got[0].Kind != FeedTomorrow {
		t.Fatalf("expected a tomorrow item, got %+v", got)
	}
}
