package calendar

import "time"

type Direction int

const (
	Prev Direction = iota
	Next
)

// ParseDirection maps "prev"/"next" to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "prev", "previous":
		return Prev, true
	case "next":
		return Next, true
	}
	return Next, false
}

// Clock is the wall-clock source injected into Today.
type Clock func() time.Time

// Step moves one month in the given direction, rolling the year over.
func Step(m Month, dir Direction) Month {
	if dir == Next {
		if m.Index == 11 {
			return Month{Year: m.Year + 1, Index: 0}
		}
		return Month{Year: m.Year, Index: m.Index + 1}
	}

	if m.Index == 0 {
		return Month{Year: m.Year - 1, Index: 11}
	}
	return Month{Year: m.Year, Index: m.Index - 1}
}

// Today returns the month containing the clock's current date and the day to select.
func Today(clock Clock) (Month, int) {
	now := clock()
	return Month{Year: now.Year(), Index: int(now.Month()) - 1}, now.Day()
}
