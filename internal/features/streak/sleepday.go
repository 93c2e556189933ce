// sleepday.go maps a bedtime to the night it belongs to.

package streak

import "time"

// CutoverHour is the local hour before which a session still counts as the previous night.
const CutoverHour = 4

// SleepDay returns local midnight of the calendar day a session starting at t is credited to.
// The hour is read in t's own location, convert with t.In(loc) first.
//
//	23:30 on May 10 → May 10
//	02:30 on May 11 → May 10
//	04:30 on May 11 → May 11
func SleepDay(t time.Time) time.Time {
	y, m, d := t.Date()
	if t.Hour() < CutoverHour {
		d-- // time.Date normalizes day 0 into the previous month
	}
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayNumber returns the day index of t's calendar date (days since 1970-01-01).
// Only the Y/M/D is used, so DST shifts never change the distance between two days.
func DayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
