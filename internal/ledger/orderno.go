package ledger

import (
	"fmt"
	"time"
)

// OrderNumber formats {prefix}{YYMMDD}-{seq:04d}, e.g. WA240115-0001.
func OrderNumber(prefix string, date time.Time, perDaySeq int) string {
	return fmt.Sprintf("%s%s-%04d", prefix, date.Format("060102"), perDaySeq)
}

// NextDailySequence returns the next per-day sequence for date given the dates
// of the orders already taken. The value is derived, not stored.
func NextDailySequence(date time.Time, existing []time.Time) int {
	day := calendarDate(date)
	n := 0
	for _, t := range existing {
		if calendarDate(t).Equal(day) {
			n++
		}
	}
	return n + 1
}

// DayNumber counts calendar days since epoch, inclusive: the epoch itself is
// day 1.
func DayNumber(epoch, date time.Time) int {
	diff := calendarDate(date).Sub(calendarDate(epoch))
	if diff < 0 {
		diff = -diff
	}
	return int(diff/(24*time.Hour)) + 1
}

// calendarDate keeps the wall-clock date of t and drops the time of day.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return calendarDate(a).Equal(calendarDate(b))
}
