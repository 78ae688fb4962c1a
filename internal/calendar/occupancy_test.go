package calendar

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func ids(occs []Occurrence) []string {
	out := make([]string, 0, len(occs))
	for _, o := range occs {
		out = append(out, o.ID)
	}
	return out
}

func TestEventsForDayExactDay(t *testing.T) {
	t.Parallel()

	events := []Occurrence{
		{ID: "before", Start: time.Date(2024, time.March, 14, 23, 59, 59, 0, time.UTC)},
		{ID: "midnight", Start: time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{ID: "late", Start: time.Date(2024, time.March, 15, 23, 30, 0, 0, time.UTC)},
		{ID: "after", Start: time.Date(2024, time.March, 16, 0, 0, 1, 0, time.UTC)},
		{ID: "other-month", Start: time.Date(2024, time.April, 15, 12, 0, 0, 0, time.UTC)},
		{ID: "other-year", Start: time.Date(2023, time.March, 15, 12, 0, 0, 0, time.UTC)},
	}

	got := EventsForDay(events, 15, 2, 2024, time.UTC)
	if diff := cmp.Diff([]string{"midnight", "late"}, ids(got)); diff != "" {
		t.Fatalf("EventsForDay mismatch (-want +got):\n%s", diff)
	}
}

func TestEventsForDayUsesLocation(t *testing.T) {
	t.Parallel()

	plus2 := time.FixedZone("UTC+2", 2*60*60)
	events := []Occurrence{
		{ID: "x", Start: time.Date(2024, time.March, 15, 23, 30, 0, 0, time.UTC)},
	}

	if got := EventsForDay(events, 15, 2, 2024, plus2); len(got) != 0 {
		t.Fatalf("expected no match on the 15th in UTC+2, got %v", ids(got))
	}
	if got := EventsForDay(events, 16, 2, 2024, plus2); len(got) != 1 {
		t.Fatalf("expected a match on the 16th in UTC+2, got %v", ids(got))
	}
}

func TestEventsForDaySkipsMalformedAndEmpty(t *testing.T) {
	t.Parallel()

	got := EventsForDay(nil, 1, 0, 2024, time.UTC)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}

	events := []Occurrence{
		{ID: "broken"},
		{ID: "ok", Start: time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)},
	}
	got = EventsForDay(events, 1, 0, 2024, time.UTC)
	if diff := cmp.Diff([]string{"ok"}, ids(got)); diff != "" {
		t.Fatalf("EventsForDay mismatch (-want +got):\n%s", diff)
	}
}

func TestEventsForDayDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	events := []Occurrence{
		{ID: "a", Start: time.Date(2024, time.January, 2, 8, 0, 0, 0, time.UTC)},
		{ID: "b", Start: time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)},
	}
	before := append([]Occurrence(nil), events...)

	_ = EventsForDay(events, 1, 0, 2024, time.UTC)
	if diff := cmp.Diff(before, events); diff != "" {
		t.Fatalf("input mutated (-before +after):\n%s", diff)
	}
}

func TestIndicators(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, time.May, 3, 9, 0, 0, 0, time.UTC)
	mk := func(n int) []Occurrence {
		out := make([]Occurrence, 0, n)
		colors := []string{"#ef4444", "", "#22c55e", "#3b82f6", "#ec4899"}
		for i := 0; i < n; i++ {
			out = append(out, Occurrence{ID: string(rune('a' + i)), Start: day, Color: colors[i]})
		}
		return out
	}

	tests := []struct {
		name string
		in   []Occurrence
		want DayIndicators
	}{
		{
			name: "none",
			in:   nil,
			want: DayIndicators{Colors: []string{}},
		},
		{
			name: "two with default colour",
			in:   mk(2),
			want: DayIndicators{Colors: []string{"#ef4444", DefaultColor}},
		},
		{
			name: "exactly three",
			in:   mk(3),
			want: DayIndicators{Colors: []string{"#ef4444", DefaultColor, "#22c55e"}},
		},
		{
			name: "five overflow",
			in:   mk(5),
			want: DayIndicators{
				Colors:        []string{"#ef4444", DefaultColor, "#22c55e"},
				Overflow:      2,
				OverflowLabel: "+2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Indicators(tt.in)); diff != "" {
				t.Fatalf("Indicators mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
