package usecases

import (
	"testing"
	"time"

	"syncalendar/internal/calendar"
	"syncalendar/internal/models"
)

func TestNormalizeOccurrencesKeepsGoodRecords(t *testing.T) {
	t.Parallel()

	raw := []RawOccurrence{
		{ID: "a", StartDatetime: "2024-05-01T09:00:00Z", Color: "#ef4444"},
		{ID: "b", StartDatetime: "not a date"},
		{ID: "c", StartDate: "2024-05-02T09:00:00Z"},
		{ID: "d"},
	}

	occs, errs := NormalizeOccurrences(raw, time.UTC)
	if len(occs) != 2 || occs[0].ID != "a" || occs[1].ID != "c" {
		t.Fatalf("unexpected occurrences %+v", occs)
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}

	// The malformed records do not blank the month.
	if got := calendar.EventsForDay(occs, 1, 4, 2024, time.UTC); len(got) != 1 {
		t.Fatalf("expected one event on May 1st, got %d", len(got))
	}
}

func TestMonthOccurrences(t *testing.T) {
	t.Parallel()

	events := []models.Event{
		{ID: "single", Start: time.Date(2024, time.January, 20, 9, 0, 0, 0, time.UTC)},
		{ID: "outside", Start: time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC)},
		{ID: "weekly", Start: time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC), Recurrence: "FREQ=WEEKLY"},
		{ID: "broken", Start: time.Date(2024, time.January, 3, 10, 0, 0, 0, time.UTC), Recurrence: "FREQ=NEVER"},
	}

	occs, errs := MonthOccurrences(events, calendar.Month{Year: 2024, Index: 0}, time.UTC)
	if len(errs) != 1 {
		t.Fatalf("expected one error for the broken rule, got %v", errs)
	}

	counts := map[string]int{}
	for _, o := range occs {
		counts[o.ID]++
	}
	if counts["single"] != 1 || counts["weekly"] != 5 || counts["broken"] != 1 || counts["outside"] != 0 {
		t.Fatalf("unexpected counts %v", counts)
	}

	for i := 1; i < len(occs); i++ {
		if occs[i].Start.Before(occs[i-1].Start) {
			t.Fatalf("occurrences not sorted at %d", i)
		}
	}
}

func TestMonthOccurrencesRecurringAcrossDST(t *testing.T) {
	t.Parallel()

	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}

	// Stored as UTC, the way a TIMESTAMPTZ comes back from the database.
	events := []models.Event{{
		ID:         "late",
		Title:      "Late call",
		Start:      time.Date(2024, time.March, 4, 23, 30, 0, 0, time.UTC), // 00:30 CET on the 5th
		Recurrence: "FREQ=WEEKLY",
	}}

	occs, errs := MonthOccurrences(events, calendar.Month{Year: 2024, Index: 3}, berlin)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
	if len(occs) == 0 {
		t.Fatal("expected April instances")
	}
	for _, o := range occs {
		local := o.Start.In(berlin)
		if local.Weekday() != time.Tuesday || local.Hour() != 0 || local.Minute() != 30 {
			t.Errorf("instance at %s, expected Tuesday 00:30 local", local)
		}
	}
}
