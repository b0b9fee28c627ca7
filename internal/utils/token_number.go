package utils

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the day/month/year format printed on tokens and reports
	DateLayout = "02/01/2006"
	// ClockLayout is the 24-hour time format printed on tokens and reports
	ClockLayout = "15:04:05"
)

// NextTokenNumber builds the DDMM### token number for the next item of the day.
// sameDayCount is the number of records (pending and committed) already stored
// for the calendar day of now. Sequences past 999 simply widen.
func NextTokenNumber(now time.Time, sameDayCount int) string {
	return fmt.Sprintf("%02d%02d%03d", now.Day(), int(now.Month()), sameDayCount+1)
}

// DayBounds returns the [start, end) of now's calendar day in its own
// location, as unix milliseconds.
func DayBounds(now time.Time) (start, end int64) {
	y, m, d := now.Date()
	first := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return first.UnixMilli(), first.AddDate(0, 0, 1).UnixMilli()
}

// SameDay reports whether the millisecond timestamp falls on now's calendar day.
func SameDay(timestamp int64, now time.Time) bool {
	start, end := DayBounds(now)
	return timestamp >= start && timestamp < end
}

// FormatDate formats t as dd/mm/yyyy.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatClock formats t as HH:MM:SS.
func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}
