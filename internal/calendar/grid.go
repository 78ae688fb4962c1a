package calendar

import (
	"fmt"
	"time"
)

// Cell is one position of the month grid. Day is 0 for the leading
// placeholders that precede the first day of the month.
type Cell struct {
	Day   int  `json:"day,omitempty"`
	Empty bool `json:"is_empty"`
}

// Month is the (year, monthIndex) pair shown by the calendar. Index is
// zero based: 0 is January, 11 is December.
type Month struct {
	Year  int `json:"year"`
	Index int `json:"month"`
}

// ValidateMonth rejects month indexes the grid functions do not accept.
func ValidateMonth(year, monthIndex int) error {
	if monthIndex < 0 || monthIndex > 11 {
		return fmt.Errorf("month index %d out of range 0..11 (year %d)", monthIndex, year)
	}
	return nil
}

// TimeMonth converts a zero based month index to time.Month.
func TimeMonth(monthIndex int) time.Month {
	return time.Month(monthIndex + 1)
}

// DaysInMonth returns the number of days of monthIndex in year.
func DaysInMonth(year, monthIndex int) int {
	// day 0 of the following month is the last day of this one
	return time.Date(year, TimeMonth(monthIndex)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// LeadingBlanks is the number of empty cells before day 1 in a Monday-first week.
func LeadingBlanks(year, monthIndex int) int {
	firstWeekday := int(time.Date(year, TimeMonth(monthIndex), 1, 0, 0, 0, 0, time.UTC).Weekday())

	adjustedFirstDay := firstWeekday
	if firstWeekday == 0 {
		adjustedFirstDay = 7
	}

	return adjustedFirstDay - 1
}

// BuildMonthGrid returns the leading placeholders followed by one cell per
// day of the month. The trailing row is not padded.
func BuildMonthGrid(year, monthIndex int) []Cell {
	blanks := LeadingBlanks(year, monthIndex)
	days := DaysInMonth(year, monthIndex)

	cells := make([]Cell, 0, blanks+days)
	for i := 0; i < blanks; i++ {
		cells = append(cells, Cell{Empty: true})
	}
	for day := 1; day <= days; day++ {
		cells = append(cells, Cell{Day: day})
	}

	return cells
}
