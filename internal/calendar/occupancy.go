package calendar

import (
	"strconv"
	"time"
)

const (
	// DefaultColor is used for occurrences that carry no colour of their own.
	DefaultColor = "#6366f1"

	// MaxIndicators is the number of colour dots shown for a single day.
	MaxIndicators = 3
)

// Occurrence is the part of an event needed to place it on the grid.
type Occurrence struct {
	ID    string    `json:"id"`
	Title string    `json:"title,omitempty"`
	Start time.Time `json:"start_datetime"`
	Color string    `json:"color"`
}

// DisplayColor returns the occurrence colour or DefaultColor.
func (o Occurrence) DisplayColor() string {
	if o.Color == "" {
		return DefaultColor
	}
	return o.Color
}

// DayIndicators is what the grid shows under a day number.
type DayIndicators struct {
	Colors        []string `json:"colors"`
	Overflow      int      `json:"overflow,omitempty"`
	OverflowLabel string   `json:"overflow_label,omitempty"`
}

// EventsForDay selects the occurrences whose start falls on the given day
// in loc. Input order is kept. Occurrences with a zero start are skipped.
func EventsForDay(events []Occurrence, day, monthIndex, year int, loc *time.Location) []Occurrence {
	if loc == nil {
		loc = time.Local
	}

	matches := make([]Occurrence, 0)
	for _, ev := range events {
		if ev.Start.IsZero() {
			continue
		}
		y, m, d := ev.Start.In(loc).Date()
		if y == year && m == TimeMonth(monthIndex) && d == day {
			matches = append(matches, ev)
		}
	}

	return matches
}

// Indicators applies the display policy: up to MaxIndicators colours in
// input order and a "+N" label for the rest.
func Indicators(matches []Occurrence) DayIndicators {
	shown := len(matches)
	if shown > MaxIndicators {
		shown = MaxIndicators
	}

	ind := DayIndicators{Colors: make([]string, 0, shown)}
	for _, ev := range matches[:shown] {
		ind.Colors = append(ind.Colors, ev.DisplayColor())
	}

	if extra := len(matches) - MaxIndicators; extra > 0 {
		ind.Overflow = extra
		ind.OverflowLabel = "+" + strconv.Itoa(extra)
	}

	return ind
}
