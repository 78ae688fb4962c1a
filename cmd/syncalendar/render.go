package main

import (
	"fmt"
	"strconv"
	"strings"

	"syncalendar/internal/calendar"
)

const cellWidth = 8

// renderMonth draws the view as text. Today is bracketed, the selected
// day is marked with '>' and each event adds a '*' (overflow as "+N").
func renderMonth(v calendar.MonthView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %d\n", calendar.TimeMonth(v.Index), v.Year)

	var row strings.Builder
	for _, wd := range v.Weekdays {
		fmt.Fprintf(&row, "%-*s", cellWidth, wd)
	}
	b.WriteString(strings.TrimRight(row.String(), " ") + "\n")

	row.Reset()
	for i, c := range v.Cells {
		fmt.Fprintf(&row, "%-*s", cellWidth, renderCell(c))
		if i%7 == 6 || i == len(v.Cells)-1 {
			b.WriteString(strings.TrimRight(row.String(), " ") + "\n")
			row.Reset()
		}
	}
	return b.String()
}

func renderCell(c calendar.DayCell) string {
	if c.Empty {
		return ""
	}

	day := strconv.Itoa(c.Day)
	if c.IsToday {
		day = "[" + day + "]"
	}
	if c.IsSelected {
		day = ">" + day
	}
	return day + strings.Repeat("*", len(c.Indicators.Colors)) + c.Indicators.OverflowLabel
}
