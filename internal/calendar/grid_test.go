package calendar

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestBuildMonthGridNumbersEveryDay(t *testing.T) {
	t.Parallel()

	for year := 1899; year <= 2101; year++ {
		for idx := 0; idx < 12; idx++ {
			cells := BuildMonthGrid(year, idx)
			want := DaysInMonth(year, idx)

			next := 1
			for _, c := range cells {
				if c.Empty {
					if next != 1 {
						t.Fatalf("%d-%02d: empty cell after day %d", year, idx+1, next-1)
					}
					continue
				}
				if c.Day != next {
					t.Fatalf("%d-%02d: expected day %d, got %d", year, idx+1, next, c.Day)
				}
				next++
			}
			if next-1 != want {
				t.Fatalf("%d-%02d: expected %d days, got %d", year, idx+1, want, next-1)
			}
			if len(cells) != LeadingBlanks(year, idx)+want {
				t.Fatalf("%d-%02d: unexpected cell count %d", year, idx+1, len(cells))
			}
		}
	}
}

func TestDaysInMonthLeapYears(t *testing.T) {
	t.Parallel()

	tests := []struct {
		year int
		want int
	}{
		{2024, 29},
		{2023, 28},
		{2000, 29},
		{1900, 28},
		{-4, 29},
	}
	for _, tt := range tests {
		if got := DaysInMonth(tt.year, 1); got != tt.want {
			t.Errorf("DaysInMonth(%d, February) = %d, want %d", tt.year, got, tt.want)
		}
	}

	nonEmpty := 0
	for _, c := range BuildMonthGrid(2024, 1) {
		if !c.Empty {
			nonEmpty++
		}
	}
	if nonEmpty != 29 {
		t.Fatalf("expected 29 days in February 2024, got %d", nonEmpty)
	}
}

func TestBuildMonthGridMondayFirst(t *testing.T) {
	t.Parallel()

	// January 2024 starts on a Monday.
	jan := BuildMonthGrid(2024, 0)
	if jan[0].Empty || jan[0].Day != 1 {
		t.Fatalf("expected January 2024 to start without blanks, got %+v", jan[0])
	}

	// September 2024 starts on a Sunday.
	sep := BuildMonthGrid(2024, 8)
	want := []Cell{{Empty: true}, {Empty: true}, {Empty: true}, {Empty: true}, {Empty: true}, {Empty: true}, {Day: 1}}
	if diff := cmp.Diff(want, sep[:7]); diff != "" {
		t.Fatalf("September 2024 first row mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateMonth(t *testing.T) {
	t.Parallel()

	if err := ValidateMonth(2024, 11); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, idx := range []int{-1, 12, 99} {
		if err := ValidateMonth(2024, idx); err == nil {
			t.Errorf("expected error for month index %d", idx)
		}
	}
}

func TestBuildMonthViewPadsWeeksAndMarksToday(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
	events := []Occurrence{
		{ID: "a", Start: time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC), Color: "#ef4444"},
		{ID: "b", Start: time.Date(2024, time.January, 20, 10, 0, 0, 0, time.UTC)},
	}

	view := BuildMonthView(Month{Year: 2024, Index: 0}, events, time.UTC, now, 0)

	if len(view.Cells) != 35 {
		t.Fatalf("expected 35 cells, got %d", len(view.Cells))
	}
	if view.Selected != 15 {
		t.Fatalf("expected today to be selected, got %d", view.Selected)
	}
	day15 := view.Cells[14]
	if !day15.IsToday || !day15.IsSelected {
		t.Fatalf("expected day 15 to be today and selected: %+v", day15)
	}
	if diff := cmp.Diff([]string{"#ef4444"}, day15.Indicators.Colors); diff != "" {
		t.Fatalf("day 15 indicators (-want +got):\n%s", diff)
	}
	if got := view.Cells[19].Indicators.Colors; len(got) != 1 || got[0] != DefaultColor {
		t.Fatalf("expected default colour on day 20, got %v", got)
	}
	if view.Prev != (Month{Year: 2023, Index: 11}) || view.Next != (Month{Year: 2024, Index: 1}) {
		t.Fatalf("unexpected neighbours prev=%+v next=%+v", view.Prev, view.Next)
	}
	if view.Name != "January" {
		t.Fatalf("unexpected month name %q", view.Name)
	}
}

func TestBuildMonthViewOtherMonthSelectsFirst(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
	view := BuildMonthView(Month{Year: 2024, Index: 1}, nil, time.UTC, now, 0)

	// February 2024 starts on a Thursday: three blanks, 29 days, padded to 35.
	if len(view.Cells) != 35 {
		t.Fatalf("expected 35 cells, got %d", len(view.Cells))
	}
	if view.Selected != 1 || !view.Cells[3].IsSelected {
		t.Fatalf("expected the 1st to be selected, got %d", view.Selected)
	}
	for _, c := range view.Cells {
		if c.IsToday {
			t.Fatalf("no cell should be today in another month: %+v", c)
		}
	}
}
