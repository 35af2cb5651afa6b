// Package ics serializes dated goals as an iCalendar feed so external
// calendar apps can subscribe to the planning view.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/starford/jera/internal/models"
)

// Export renders the dated, non-archived goals of one year as all-day
// VEVENTs. A one-sided range exports as a single day on its lone bound;
// DTEND is exclusive per RFC 5545, so it lands one day past the last
// occupied day.
func Export(goals []models.Goal, year int) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//jera//goal calendar//EN")
	cal.SetXWRCalName(fmt.Sprintf("Goals %d", year))

	for i := range goals {
		g := &goals[i]
		if g.Archived || !g.Range.HasDates() {
			continue
		}
		start, end := eventDays(g.Range)

		ev := cal.AddEvent(g.ID)
		ev.SetDtStampTime(g.UpdatedAt.UTC())
		ev.SetSummary(g.Title)
		if g.Content != "" {
			ev.SetDescription(g.Content)
		}
		if !g.Uncolored() {
			ev.SetProperty(ical.ComponentProperty(ical.PropertyColor), g.Color)
		}
		ev.SetAllDayStartAt(start)
		ev.SetAllDayEndAt(end.AddDate(0, 0, 1))
	}

	return cal.Serialize()
}

// eventDays collapses a possibly one-sided range onto its occupied days.
func eventDays(r models.DateRange) (start, end time.Time) {
	switch {
	case r.Start != nil && r.End != nil:
		return models.Day(*r.Start), models.Day(*r.End)
	case r.Start != nil:
		d := models.Day(*r.Start)
		return d, d
	default:
		d := models.Day(*r.End)
		return d, d
	}
}
