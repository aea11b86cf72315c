package id

import (
	"fmt"
	"time"
)

// FormatDateKey returns the date surrogate key for t: the calendar date as
// the integer YYYYMMDD. Time of day and location are ignored.
func FormatDateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// ParseDateKey decodes a YYYYMMDD key back to midnight UTC of that date.
// It rejects keys that do not name a real calendar date.
func ParseDateKey(key int) (time.Time, error) {
	if key <= 0 {
		return time.Time{}, fmt.Errorf("invalid date key %d", key)
	}
	year := key / 10000
	month := (key / 100) % 100
	day := key % 100

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range parts, e.g. 2024-02-30 -> 2024-03-01.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid date key %d: not a calendar date", key)
	}
	return t, nil
}

// Quarter returns the calendar quarter (1-4) of a month (1-12).
func Quarter(month int) int {
	return (month-1)/3 + 1
}
