package calendar

import "time"

// Weekdays are the column headers of a Monday-first grid.
var Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DayCell is a grid cell decorated with the state the month view needs.
type DayCell struct {
	Cell
	IsToday    bool          `json:"is_today,omitempty"`
	IsSelected bool          `json:"is_selected,omitempty"`
	Indicators DayIndicators `json:"indicators"`
	Events     []Occurrence  `json:"events,omitempty"`
}

// MonthView is a full rendering of one month: padded to whole weeks, with
// occupancy resolved per day.
type MonthView struct {
	Month
	Name     string    `json:"name"`
	Weekdays []string  `json:"weekdays"`
	Cells    []DayCell `json:"cells"`
	Selected int       `json:"selected"`
	Prev     Month     `json:"prev"`
	Next     Month     `json:"next"`
}

// BuildMonthView renders m. When selected is 0 the current day is selected
// if now falls in m, otherwise the 1st.
func BuildMonthView(m Month, events []Occurrence, loc *time.Location, now time.Time, selected int) MonthView {
	if loc == nil {
		loc = time.Local
	}
	today, todayDay := Today(func() time.Time { return now.In(loc) })
	isCurrent := today == m

	days := DaysInMonth(m.Year, m.Index)
	if selected <= 0 || selected > days {
		selected = 1
		if isCurrent {
			selected = todayDay
		}
	}

	grid := BuildMonthGrid(m.Year, m.Index)
	cells := make([]DayCell, 0, len(grid)+6)
	for _, c := range grid {
		dc := DayCell{Cell: c, Indicators: DayIndicators{Colors: []string{}}}
		if !c.Empty {
			matches := EventsForDay(events, c.Day, m.Index, m.Year, loc)
			dc.Indicators = Indicators(matches)
			if len(matches) > 0 {
				dc.Events = matches
			}
			dc.IsToday = isCurrent && c.Day == todayDay
			dc.IsSelected = c.Day == selected
		}
		cells = append(cells, dc)
	}
	for len(cells)%len(Weekdays) != 0 {
		cells = append(cells, DayCell{Cell: Cell{Empty: true}, Indicators: DayIndicators{Colors: []string{}}})
	}

	return MonthView{
		Month:    m,
		Name:     TimeMonth(m.Index).String(),
		Weekdays: Weekdays,
		Cells:    cells,
		Selected: selected,
		Prev:     Step(m, Prev),
		Next:     Step(m, Next),
	}
}
