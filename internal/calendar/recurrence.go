package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// maxExpanded caps the number of instances a single rule may produce in one window.
const maxExpanded = 500

// ExpandRecurrence returns the instances of base produced by an RRULE within
// [from, to). The rule may carry an "RRULE:" prefix. Instances keep the
// wall-clock time of base.Start in loc, so they do not shift across DST.
func ExpandRecurrence(base Occurrence, rule string, from, to time.Time, loc *time.Location) ([]Occurrence, error) {
	if loc == nil {
		loc = time.Local
	}
	rule = strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:")
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("parse recurrence %q: %w", rule, err)
	}
	r.DTStart(base.Start.In(loc))

	out := make([]Occurrence, 0)
	for _, start := range r.Between(from, to, true) {
		if !start.Before(to) {
			continue
		}
		if len(out) == maxExpanded {
			break
		}
		occ := base
		occ.Start = start
		out = append(out, occ)
	}

	return out, nil
}

// MonthRange returns the [start, end) instants of m in loc.
func MonthRange(m Month, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	start := time.Date(m.Year, TimeMonth(m.Index), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}
