package schedule

import (
	"time"

	"github.com/starford/jera/internal/models"
)

// HasConflict reports whether candidate collides with any existing goal.
// Archived goals, the goal named by excludeID (edit-in-place), and dateless
// goals are skipped. Every path that can place dates on the calendar runs
// through this one check; no call site reimplements the comparison.
func HasConflict(candidate models.DateRange, goals []models.Goal, excludeID string) bool {
	if !candidate.HasDates() {
		return false
	}
	for i := range goals {
		g := &goals[i]
		if g.Archived || g.ID == excludeID || !g.Range.HasDates() {
			continue
		}
		if RangesOverlap(candidate, g.Range) {
			return true
		}
	}
	return false
}

// DayOccupied reports whether day touches any non-archived dated goal.
// Used by the selection flow and the date-picker precheck.
func DayOccupied(day time.Time, goals []models.Goal) bool {
	for i := range goals {
		g := &goals[i]
		if g.Archived || !g.Range.HasDates() {
			continue
		}
		if PointMatches(g.Range, day) {
			return true
		}
	}
	return false
}
