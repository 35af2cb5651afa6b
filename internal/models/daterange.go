package models

import "time"

// DateRange is a goal's temporal extent: zero, one, or two bounds.
//
// Stored instants are full timestamps, but every comparison in the system
// happens at day granularity through Day. Relying on stored values being
// midnight-aligned is not allowed anywhere.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// HasDates reports whether at least one bound is set. A dateless range is
// excluded from all overlap checks.
func (r DateRange) HasDates() bool {
	return r.Start != nil || r.End != nil
}

// Bounded reports whether both bounds are set.
func (r DateRange) Bounded() bool {
	return r.Start != nil && r.End != nil
}

// Normalized returns a copy with Start <= End (by day) when both bounds are
// set. Reversed user input is swapped, never rejected.
func (r DateRange) Normalized() DateRange {
	if r.Bounded() && Day(*r.Start).After(Day(*r.End)) {
		return DateRange{Start: r.End, End: r.Start}
	}
	return r
}
