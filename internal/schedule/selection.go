package schedule

import (
	"time"

	"github.com/starford/jera/internal/models"
)

// Selection is the ephemeral state of the two-click range selection flow.
// The zero value is the empty state. Selections are plain values passed
// into Click and returned from it; nothing is shared across sessions and
// an anchored selection persists until a transition clears it.
type Selection struct {
	Anchor *time.Time `json:"anchor,omitempty"`
}

// Anchored reports whether a first date has been chosen.
func (s Selection) Anchored() bool {
	return s.Anchor != nil
}

// User-facing rejection notices.
const (
	RejectOccupied = "this date already has a goal assigned"
	RejectOverlap  = "selected date range overlaps with an existing goal"
)

// Outcome is the result of feeding one click through the state machine.
// Exactly one of Create and Reject is set when the transition produced an
// effect; both are empty when the click merely anchored.
type Outcome struct {
	State  Selection
	Create *models.DateRange // normalized range to create a goal for
	Reject string            // user-facing refusal, empty when none
}

// Click advances the selection with a clicked day against an immutable
// snapshot of the caller's goals.
//
// A click on a day occupied by any non-archived dated goal is refused
// outright and leaves the state unchanged. Otherwise the first click
// anchors; the second normalizes the pair (clicking the anchor day again
// degenerates to a single-day range), checks for conflicts, and either
// emits a creation range or rejects. Either way the selection resets, and
// it stays reset even if the downstream creation fails.
func Click(s Selection, day time.Time, goals []models.Goal) Outcome {
	d := models.Day(day)

	if DayOccupied(d, goals) {
		return Outcome{State: s, Reject: RejectOccupied}
	}

	if !s.Anchored() {
		return Outcome{State: Selection{Anchor: &d}}
	}

	r := models.DateRange{Start: s.Anchor, End: &d}.Normalized()
	if HasConflict(r, goals, "") {
		return Outcome{State: Selection{}, Reject: RejectOverlap}
	}
	return Outcome{State: Selection{}, Create: &r}
}
