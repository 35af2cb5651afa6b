package schedule

import (
	"fmt"
	"time"

	"github.com/starford/jera/internal/models"
)

// Role is a goal's relationship to a specific calendar day.
type Role string

const (
	RoleStart Role = "start"
	RoleEnd   Role = "end"
	RoleSpan  Role = "span"
)

// Occupancy ties one goal to its role on a particular day.
type Occupancy struct {
	GoalID string `json:"goal_id"`
	Title  string `json:"title"`
	Color  string `json:"color,omitempty"`
	Role   Role   `json:"role"`
}

// FillKind selects how a day cell is painted.
type FillKind string

const (
	FillNone     FillKind = "none"
	FillSolid    FillKind = "solid"
	FillGradient FillKind = "gradient"
)

// Fill is the visual directive for one day cell.
type Fill struct {
	Kind FillKind `json:"kind"`
	// Colors holds the participating colors in encounter order: one entry
	// for a solid fill, two to four for a gradient. A fifth or later
	// colored goal on the same day is dropped from the gradient (it still
	// appears in the day's goal list).
	Colors []string `json:"colors,omitempty"`
	// Uncolored is set when the day is occupied exclusively by goals
	// without a fill color; renderers give it a border treatment instead.
	Uncolored bool `json:"uncolored,omitempty"`
	// CSS is the precomputed background value for the directive.
	CSS string `json:"css,omitempty"`
}

// TodayMark selects the accent for the current day. A day with no goals
// gets a subdued highlight; an occupied day gets a ring instead. The two
// never compose.
type TodayMark string

const (
	TodayNone      TodayMark = ""
	TodayHighlight TodayMark = "highlight"
	TodayRing      TodayMark = "ring"
)

// Day is one renderable calendar cell.
type Day struct {
	Date      time.Time   `json:"date"`
	DayNumber int         `json:"day"`
	IsToday   bool        `json:"today,omitempty"`
	Weekend   bool        `json:"weekend,omitempty"`
	Today     TodayMark   `json:"today_mark,omitempty"`
	Goals     []Occupancy `json:"goals,omitempty"`
	Fill      Fill        `json:"fill"`
}

// Month is the per-day occupancy index for one calendar month, ready for a
// seven-column grid: FirstWeekday (Sunday = 0) is the leading offset.
type Month struct {
	Year         int        `json:"year"`
	Month        time.Month `json:"month"`
	Name         string     `json:"name"`
	FirstWeekday int        `json:"first_weekday"`
	Days         []Day      `json:"days"`
}

// DaysInMonth returns the month length using the day-zero-of-next-month
// trick on the proleptic Gregorian calendar.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// BuildMonth computes the occupancy index for one month from an immutable
// goal snapshot. For each day, each dated goal contributes at most one
// entry: start when the day matches the range start, end when it matches
// the end of a multi-day range (a single-day goal records only start), span
// for the strict interior of a bounded range.
func BuildMonth(year int, month time.Month, goals []models.Goal, today time.Time) Month {
	m := Month{
		Year:         year,
		Month:        month,
		Name:         month.String(),
		FirstWeekday: int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()),
	}

	n := DaysInMonth(year, month)
	m.Days = make([]Day, 0, n)
	for dayNum := 1; dayNum <= n; dayNum++ {
		date := time.Date(year, month, dayNum, 0, 0, 0, 0, time.UTC)
		cell := Day{
			Date:      date,
			DayNumber: dayNum,
			IsToday:   models.SameDay(date, today),
			Weekend:   date.Weekday() == time.Sunday || date.Weekday() == time.Saturday,
		}

		for i := range goals {
			g := &goals[i]
			if !g.Range.HasDates() {
				continue
			}
			if role, ok := roleOn(g.Range, date); ok {
				cell.Goals = append(cell.Goals, Occupancy{
					GoalID: g.ID,
					Title:  g.Title,
					Color:  g.Color,
					Role:   role,
				})
			}
		}

		cell.Fill = fillFor(cell.Goals)
		if cell.IsToday {
			if len(cell.Goals) > 0 {
				cell.Today = TodayRing
			} else {
				cell.Today = TodayHighlight
			}
		}
		m.Days = append(m.Days, cell)
	}
	return m
}

// roleOn decides the single role a range contributes to date, if any.
func roleOn(r models.DateRange, date time.Time) (Role, bool) {
	r = r.Normalized()
	switch {
	case r.Start != nil && models.SameDay(date, *r.Start):
		return RoleStart, true
	case r.End != nil && models.SameDay(date, *r.End) &&
		(r.Start == nil || !models.SameDay(*r.Start, *r.End)):
		return RoleEnd, true
	case r.Bounded() &&
		date.After(models.Day(*r.Start)) && date.Before(models.Day(*r.End)):
		return RoleSpan, true
	}
	return "", false
}

// fillFor derives the paint directive from a day's occupancies. Colored
// goals partition from uncolored ones; a lone color paints solid, two or
// more paint a fixed-geometry gradient capped at four colors.
func fillFor(occ []Occupancy) Fill {
	if len(occ) == 0 {
		return Fill{Kind: FillNone}
	}

	var colors []string
	for _, o := range occ {
		if o.Color != "" && o.Color != models.ColorTransparent {
			colors = append(colors, o.Color)
		}
	}

	switch len(colors) {
	case 0:
		return Fill{Kind: FillNone, Uncolored: true}
	case 1:
		return Fill{Kind: FillSolid, Colors: colors, CSS: colors[0]}
	default:
		if len(colors) > 4 {
			colors = colors[:4]
		}
		return Fill{Kind: FillGradient, Colors: colors, CSS: gradientCSS(colors)}
	}
}

// gradientCSS renders the fixed wedge geometry: two diagonal halves, three
// thirds, or four quarter bands.
func gradientCSS(colors []string) string {
	switch len(colors) {
	case 2:
		return fmt.Sprintf("linear-gradient(45deg, %s 50%%, %s 50%%)",
			colors[0], colors[1])
	case 3:
		return fmt.Sprintf("linear-gradient(120deg, %s 33.33%%, %s 33.33%% 66.66%%, %s 66.66%%)",
			colors[0], colors[1], colors[2])
	default:
		return fmt.Sprintf("linear-gradient(90deg, %s 25%%, %s 25%% 50%%, %s 50%% 75%%, %s 75%%)",
			colors[0], colors[1], colors[2], colors[3])
	}
}
