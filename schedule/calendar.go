/*
calendar.go - Business-day arithmetic over a week schedule

PURPOSE:
  Pure date arithmetic for the scheduler: classify a date as work day or rest
  day, add N business days, and measure the business-day span between two
  dates. The calendar derives everything from the WeekSchedule: any weekday
  with a positive capacity pool is a work day, so a reduced-capacity Saturday
  counts as a work day while a closed Sunday does not.

COUNTING CONVENTION:
  BusinessDayDistance uses the inclusive convention required by downstream
  duration math: if start and end fall on the same work day, the distance is 1
  (a one-day production run spans one day, not zero). When the end date is a
  work day the range is inclusive of both ends. The same convention sizes both
  production durations and wait times, so the two never disagree by one.

DATES:
  All arithmetic happens at day granularity. Inputs are normalized to UTC
  midnight; callers never need to pre-truncate.

SEE ALSO:
  - types.go:     WeekSchedule definition
  - simulator.go: steps one calendar day at a time and asks IsWorkDay
*/
package schedule

import "time"

// Normalize truncates a time to UTC midnight. All calendar math operates on
// normalized dates.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Calendar answers business-day questions for one week schedule.
type Calendar struct {
	Week WeekSchedule
}

// IsWorkDay reports whether any capacity exists on the given date.
func (c Calendar) IsWorkDay(t time.Time) bool {
	return c.Week.PoolOn(t.Weekday()) > 0
}

// NextWorkDay returns t itself when t is a work day, otherwise the first
// following work day. NewWeekSchedule guarantees at least one working
// weekday, so this always terminates within a week.
func (c Calendar) NextWorkDay(t time.Time) time.Time {
	d := Normalize(t)
	for !c.IsWorkDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// AddBusinessDays advances the date by exactly n work days, skipping rest
// days. n <= 0 returns the (normalized) date unchanged.
func (c Calendar) AddBusinessDays(t time.Time, n int) time.Time {
	d := Normalize(t)
	for added := 0; added < n; {
		d = d.AddDate(0, 0, 1)
		if c.IsWorkDay(d) {
			added++
		}
	}
	return d
}

// BusinessDayDistance returns the number of work days spanned between two
// dates, inclusive at both ends when the end date is a work day. Same work
// day in and out gives 1; same rest day gives 0. Argument order does not
// matter.
func (c Calendar) BusinessDayDistance(a, b time.Time) int {
	from, to := Normalize(a), Normalize(b)
	if to.Before(from) {
		from, to = to, from
	}

	count := 0
	for cur := from; cur.Before(to); cur = cur.AddDate(0, 0, 1) {
		if c.IsWorkDay(cur) {
			count++
		}
	}

	if c.IsWorkDay(to) {
		if from.Equal(to) {
			return 1
		}
		return count + 1
	}
	if from.Equal(to) {
		return 0
	}
	return count
}
