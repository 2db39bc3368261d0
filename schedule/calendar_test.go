package schedule_test

import (
	"testing"
	"time"

	"github.com/warp/production-engine/schedule"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// date builds a normalized UTC date. Monday 2025-01-06 is the anchor used
// throughout these tests.
func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// shopCalendar is the standard rule: full pool Monday-Friday, half Saturday,
// closed Sunday.
func shopCalendar() schedule.Calendar {
	return schedule.Calendar{Week: schedule.StandardWeek(270)}
}

// weekdayCalendar works Monday-Friday only.
func weekdayCalendar(t *testing.T) schedule.Calendar {
	t.Helper()
	week, err := schedule.NewWeekSchedule(map[time.Weekday]int{
		time.Monday:    1,
		time.Tuesday:   1,
		time.Wednesday: 1,
		time.Thursday:  1,
		time.Friday:    1,
	})
	if err != nil {
		t.Fatalf("unexpected error building week: %v", err)
	}
	return schedule.Calendar{Week: week}
}

// =============================================================================
// WORK DAY CLASSIFICATION
// =============================================================================

func TestIsWorkDay_ReducedSaturdayStillCounts(t *testing.T) {
	// GIVEN: The standard week rule (half pool Saturday, closed Sunday)
	// WHEN: Classifying each day of one week
	// THEN: Saturday is a work day, Sunday is not

	cal := shopCalendar()

	cases := []struct {
		day  time.Time
		want bool
	}{
		{date(2025, time.January, 6), true},   // Monday
		{date(2025, time.January, 10), true},  // Friday
		{date(2025, time.January, 11), true},  // Saturday, reduced pool
		{date(2025, time.January, 12), false}, // Sunday, closed
	}
	for _, c := range cases {
		if got := cal.IsWorkDay(c.day); got != c.want {
			t.Errorf("IsWorkDay(%s) = %v, want %v", c.day.Weekday(), got, c.want)
		}
	}
}

func TestNextWorkDay_SundayRollsToMonday(t *testing.T) {
	// GIVEN: A Sunday under the standard rule
	// WHEN: Asking for the next work day
	// THEN: Monday is returned; a work day returns itself

	cal := shopCalendar()

	sunday := date(2025, time.January, 5)
	monday := date(2025, time.January, 6)

	if got := cal.NextWorkDay(sunday); !got.Equal(monday) {
		t.Errorf("NextWorkDay(Sunday) = %v, want %v", got, monday)
	}
	if got := cal.NextWorkDay(monday); !got.Equal(monday) {
		t.Errorf("NextWorkDay(Monday) = %v, want itself", got)
	}
}

func TestNextWorkDay_NormalizesTimeOfDay(t *testing.T) {
	// GIVEN: A work-day timestamp with a non-midnight clock time
	// WHEN: Asking for the next work day
	// THEN: The result is that same date at UTC midnight

	cal := shopCalendar()

	noon := time.Date(2025, time.January, 6, 12, 30, 0, 0, time.UTC)
	if got := cal.NextWorkDay(noon); !got.Equal(date(2025, time.January, 6)) {
		t.Errorf("NextWorkDay did not normalize: got %v", got)
	}
}

// =============================================================================
// ADDING BUSINESS DAYS
// =============================================================================

func TestAddBusinessDays_SkipsSundays(t *testing.T) {
	// GIVEN: Monday 2025-01-06 under the standard rule
	// WHEN: Adding business days across the weekend
	// THEN: Saturday counts, Sunday is skipped

	cal := shopCalendar()
	monday := date(2025, time.January, 6)

	cases := []struct {
		n    int
		want time.Time
	}{
		{0, monday},
		{1, date(2025, time.January, 7)},  // Tuesday
		{5, date(2025, time.January, 11)}, // Saturday works
		{6, date(2025, time.January, 13)}, // Sunday skipped, lands Monday
	}
	for _, c := range cases {
		if got := cal.AddBusinessDays(monday, c.n); !got.Equal(c.want) {
			t.Errorf("AddBusinessDays(+%d) = %v, want %v", c.n, got, c.want)
		}
	}
}

func TestAddBusinessDays_FromRestDay(t *testing.T) {
	// GIVEN: A Sunday start under a Monday-Friday rule
	// WHEN: Adding one business day
	// THEN: The result is Monday

	cal := weekdayCalendar(t)
	sunday := date(2025, time.January, 5)

	if got := cal.AddBusinessDays(sunday, 1); !got.Equal(date(2025, time.January, 6)) {
		t.Errorf("AddBusinessDays(Sunday, 1) = %v, want Monday", got)
	}
}

// =============================================================================
// BUSINESS DAY DISTANCE
// =============================================================================

func TestBusinessDayDistance_SameWorkDayIsOne(t *testing.T) {
	// GIVEN: Start and end on the same work day
	// WHEN: Measuring the distance
	// THEN: A one-day production run spans 1 day, not 0

	cal := shopCalendar()
	monday := date(2025, time.January, 6)

	if got := cal.BusinessDayDistance(monday, monday); got != 1 {
		t.Errorf("distance(Monday, Monday) = %d, want 1", got)
	}
}

func TestBusinessDayDistance_SameRestDayIsZero(t *testing.T) {
	// GIVEN: Start and end on the same closed Sunday
	// WHEN: Measuring the distance
	// THEN: No work days are spanned

	cal := shopCalendar()
	sunday := date(2025, time.January, 5)

	if got := cal.BusinessDayDistance(sunday, sunday); got != 0 {
		t.Errorf("distance(Sunday, Sunday) = %d, want 0", got)
	}
}

func TestBusinessDayDistance_InclusiveSpans(t *testing.T) {
	// GIVEN: The standard rule (Saturday works, Sunday does not)
	// WHEN: Measuring spans that end on work days and rest days
	// THEN: Work-day ends are inclusive, rest-day ends are not counted

	cal := shopCalendar()
	monday := date(2025, time.January, 6)

	cases := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"Monday to Friday", monday, date(2025, time.January, 10), 5},
		{"Monday to Saturday", monday, date(2025, time.January, 11), 6},
		{"Monday to Sunday", monday, date(2025, time.January, 12), 6},
		{"Monday to next Monday", monday, date(2025, time.January, 13), 7},
	}
	for _, c := range cases {
		if got := cal.BusinessDayDistance(c.a, c.b); got != c.want {
			t.Errorf("%s: distance = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestBusinessDayDistance_OrderIndependent(t *testing.T) {
	// GIVEN: Two dates passed in both orders
	// WHEN: Measuring the distance
	// THEN: The result is identical

	cal := shopCalendar()
	a := date(2025, time.January, 6)
	b := date(2025, time.January, 17)

	if cal.BusinessDayDistance(a, b) != cal.BusinessDayDistance(b, a) {
		t.Errorf("distance is not symmetric: %d vs %d",
			cal.BusinessDayDistance(a, b), cal.BusinessDayDistance(b, a))
	}
}
