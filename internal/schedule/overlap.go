// Package schedule implements the date-range conflict engine: the shared
// overlap predicate behind every conflict decision, the conflict checker
// used by all mutation paths, the per-day occupancy index that drives
// calendar rendering, and the two-click selection state machine.
//
// All functions here are pure and operate at day granularity; callers hand
// in an immutable snapshot of the goal collection.
package schedule

import (
	"time"

	"github.com/starford/jera/internal/models"
)

// PointMatches reports whether day touches r: day-equal to either bound, or
// strictly inside a bounded range. Boundary days are reported through the
// bound branches, never as interior.
func PointMatches(r models.DateRange, day time.Time) bool {
	r = r.Normalized()
	d := models.Day(day)
	if r.Start != nil && models.Day(*r.Start).Equal(d) {
		return true
	}
	if r.End != nil && models.Day(*r.End).Equal(d) {
		return true
	}
	if r.Bounded() {
		return d.After(models.Day(*r.Start)) && d.Before(models.Day(*r.End))
	}
	return false
}

// RangesOverlap is the single interval-intersection test used everywhere a
// conflict is decided. Ranges are normalized first; a range with no bounds
// overlaps nothing. Two bounded ranges intersect as closed intervals. A
// bounded range conflicts with a one-sided one when the lone bound lands on
// or inside it, and two one-sided ranges conflict only on day-equal bounds.
// The test is symmetric.
func RangesOverlap(a, b models.DateRange) bool {
	if !a.HasDates() || !b.HasDates() {
		return false
	}
	a = a.Normalized()
	b = b.Normalized()

	switch {
	case a.Bounded() && b.Bounded():
		return !(models.Day(*a.End).Before(models.Day(*b.Start)) ||
			models.Day(*a.Start).After(models.Day(*b.End)))
	case a.Bounded():
		return withinClosed(loneBound(b), a)
	case b.Bounded():
		return withinClosed(loneBound(a), b)
	default:
		return models.SameDay(loneBound(a), loneBound(b))
	}
}

// withinClosed reports whether t lands inside the bounded range r,
// boundary days included.
func withinClosed(t time.Time, r models.DateRange) bool {
	d := models.Day(t)
	return !d.Before(models.Day(*r.Start)) && !d.After(models.Day(*r.End))
}

// loneBound returns the single set bound of a one-sided range.
func loneBound(r models.DateRange) time.Time {
	if r.Start != nil {
		return *r.Start
	}
	return *r.End
}
