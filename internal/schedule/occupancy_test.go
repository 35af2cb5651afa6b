package schedule

import (
	"testing"
	"time"

	"github.com/starford/jera/internal/models"
)

func goalsFor(t *testing.T, m Month, dayNum int) []Occupancy {
	t.Helper()
	if dayNum < 1 || dayNum > len(m.Days) {
		t.Fatalf("day %d out of range", dayNum)
	}
	return m.Days[dayNum-1].Goals
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29},
		{2025, time.April, 30},
		{2025, time.December, 31},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.year, tc.month); got != tc.want {
			t.Errorf("DaysInMonth(%d, %v) = %d, want %d", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestBuildMonthRoles(t *testing.T) {
	g := models.Goal{
		ID:    "g1",
		Title: "trip",
		Color: "#ff0000",
		Range: rng(ptr(stamp(2025, time.January, 5)), ptr(stamp(2025, time.January, 8))),
	}
	m := BuildMonth(2025, time.January, []models.Goal{g}, day(2024, time.June, 1))

	check := func(dayNum int, want Role) {
		t.Helper()
		occ := goalsFor(t, m, dayNum)
		if len(occ) != 1 {
			t.Fatalf("day %d: %d entries, want 1", dayNum, len(occ))
		}
		if occ[0].Role != want {
			t.Errorf("day %d: role = %s, want %s", dayNum, occ[0].Role, want)
		}
	}
	check(5, RoleStart)
	check(6, RoleSpan)
	check(7, RoleSpan)
	check(8, RoleEnd)

	if len(goalsFor(t, m, 4)) != 0 || len(goalsFor(t, m, 9)) != 0 {
		t.Error("days outside the range should be empty")
	}
}

func TestBuildMonthSingleDayGoalRecordsOnlyStart(t *testing.T) {
	// Same day, different times of day: still a single-day goal.
	g := models.Goal{
		ID:    "g1",
		Range: rng(ptr(time.Date(2025, time.March, 12, 8, 0, 0, 0, time.UTC)), ptr(time.Date(2025, time.March, 12, 19, 0, 0, 0, time.UTC))),
	}
	m := BuildMonth(2025, time.March, []models.Goal{g}, day(2024, time.June, 1))

	occ := goalsFor(t, m, 12)
	if len(occ) != 1 {
		t.Fatalf("single-day goal produced %d entries, want 1", len(occ))
	}
	if occ[0].Role != RoleStart {
		t.Errorf("single-day goal role = %s, want start", occ[0].Role)
	}
}

func TestBuildMonthEndOnlyGoal(t *testing.T) {
	g := models.Goal{ID: "g1", Range: rng(nil, ptr(stamp(2025, time.March, 20)))}
	m := BuildMonth(2025, time.March, []models.Goal{g}, day(2024, time.June, 1))

	occ := goalsFor(t, m, 20)
	if len(occ) != 1 || occ[0].Role != RoleEnd {
		t.Fatalf("end-only goal should record role=end on its day, got %v", occ)
	}
}

func TestFillSingleGoal(t *testing.T) {
	colored := models.Goal{ID: "c", Color: "#00ff00", Range: rng(ptr(stamp(2025, time.May, 2)), nil)}
	uncolored := models.Goal{ID: "u", Color: models.ColorTransparent, Range: rng(ptr(stamp(2025, time.May, 4)), nil)}

	m := BuildMonth(2025, time.May, []models.Goal{colored, uncolored}, day(2024, time.June, 1))

	f := m.Days[1].Fill
	if f.Kind != FillSolid || f.CSS != "#00ff00" {
		t.Errorf("colored day fill = %+v, want solid #00ff00", f)
	}

	f = m.Days[3].Fill
	if f.Kind != FillNone || !f.Uncolored {
		t.Errorf("transparent day fill = %+v, want none+uncolored", f)
	}

	if f := m.Days[0].Fill; f.Kind != FillNone || f.Uncolored {
		t.Errorf("empty day fill = %+v, want bare none", f)
	}
}

func TestFillMixedColoredAndUncolored(t *testing.T) {
	// One colored plus one uncolored goal on the same day: solid fill,
	// the uncolored goal contributes nothing visually.
	goals := []models.Goal{
		{ID: "u", Color: "", Range: rng(ptr(stamp(2025, time.May, 2)), nil)},
		{ID: "c", Color: "#123456", Range: rng(nil, ptr(stamp(2025, time.May, 2)))},
	}
	m := BuildMonth(2025, time.May, goals, day(2024, time.June, 1))

	f := m.Days[1].Fill
	if f.Kind != FillSolid || f.CSS != "#123456" || f.Uncolored {
		t.Errorf("mixed day fill = %+v, want solid #123456", f)
	}
	if len(m.Days[1].Goals) != 2 {
		t.Errorf("both goals should appear in the day list, got %d", len(m.Days[1].Goals))
	}
}

func TestFillGradientGeometry(t *testing.T) {
	mk := func(id, color string) models.Goal {
		return models.Goal{ID: id, Color: color, Range: rng(ptr(stamp(2025, time.March, 1)), nil)}
	}

	two := BuildMonth(2025, time.March, []models.Goal{mk("a", "#a"), mk("b", "#b")}, day(2024, time.June, 1))
	if got := two.Days[0].Fill.CSS; got != "linear-gradient(45deg, #a 50%, #b 50%)" {
		t.Errorf("two-color gradient = %q", got)
	}

	three := BuildMonth(2025, time.March, []models.Goal{mk("a", "#a"), mk("b", "#b"), mk("c", "#c")}, day(2024, time.June, 1))
	if got := three.Days[0].Fill.CSS; got != "linear-gradient(120deg, #a 33.33%, #b 33.33% 66.66%, #c 66.66%)" {
		t.Errorf("three-color gradient = %q", got)
	}

	four := BuildMonth(2025, time.March, []models.Goal{mk("a", "#a"), mk("b", "#b"), mk("c", "#c"), mk("d", "#d")}, day(2024, time.June, 1))
	if got := four.Days[0].Fill.CSS; got != "linear-gradient(90deg, #a 25%, #b 25% 50%, #c 50% 75%, #d 75%)" {
		t.Errorf("four-color gradient = %q", got)
	}
}

// Scenario: five colored goals on Mar 1. The gradient uses only the first
// four colors in encounter order; the fifth stays in the day's goal list.
func TestFillFifthColorDroppedFromGradient(t *testing.T) {
	var goals []models.Goal
	colors := []string{"#c1", "#c2", "#c3", "#c4", "#c5"}
	for i, c := range colors {
		goals = append(goals, models.Goal{
			ID:    string(rune('a' + i)),
			Color: c,
			Range: rng(ptr(stamp(2025, time.March, 1)), nil),
		})
	}
	m := BuildMonth(2025, time.March, goals, day(2024, time.June, 1))

	f := m.Days[0].Fill
	if f.Kind != FillGradient {
		t.Fatalf("fill kind = %s, want gradient", f.Kind)
	}
	if len(f.Colors) != 4 {
		t.Fatalf("gradient colors = %d, want 4", len(f.Colors))
	}
	for i := 0; i < 4; i++ {
		if f.Colors[i] != colors[i] {
			t.Errorf("gradient color %d = %s, want %s (encounter order)", i, f.Colors[i], colors[i])
		}
	}
	if len(m.Days[0].Goals) != 5 {
		t.Errorf("day goal list has %d entries, want all 5", len(m.Days[0].Goals))
	}
}

func TestTodayMarks(t *testing.T) {
	today := stamp(2025, time.March, 10)
	g := models.Goal{ID: "g", Color: "#fff", Range: rng(ptr(stamp(2025, time.March, 10)), nil)}

	withGoal := BuildMonth(2025, time.March, []models.Goal{g}, today)
	if withGoal.Days[9].Today != TodayRing {
		t.Errorf("occupied today = %q, want ring", withGoal.Days[9].Today)
	}

	empty := BuildMonth(2025, time.March, nil, today)
	if empty.Days[9].Today != TodayHighlight {
		t.Errorf("empty today = %q, want highlight", empty.Days[9].Today)
	}
	if empty.Days[10].Today != TodayNone {
		t.Error("non-today day should carry no mark")
	}
}

func TestBuildMonthGridMetadata(t *testing.T) {
	m := BuildMonth(2025, time.June, nil, day(2024, time.June, 1))
	// June 1 2025 is a Sunday.
	if m.FirstWeekday != 0 {
		t.Errorf("first weekday = %d, want 0 (Sunday)", m.FirstWeekday)
	}
	if m.Name != "June" || len(m.Days) != 30 {
		t.Errorf("month metadata wrong: %s, %d days", m.Name, len(m.Days))
	}
	if !m.Days[6].Weekend { // June 7 2025, Saturday
		t.Error("June 7 2025 should be flagged weekend")
	}
	if m.Days[2].Weekend { // June 3 2025, Tuesday
		t.Error("June 3 2025 should not be flagged weekend")
	}
}
