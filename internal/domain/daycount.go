package domain

import "time"

// DateOnly normalizes a timestamp to a calendar date at UTC midnight.
// All accrual arithmetic works on calendar dates without time-of-day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayCount returns the number of whole elapsed days between two dates
// under the actual/365 convention. The result is negative when to
// precedes from; callers validate date ordering before accruing.
func DayCount(from, to time.Time) int {
	from = DateOnly(from)
	to = DateOnly(to)

	return int(to.Sub(from) / (24 * time.Hour))
}
