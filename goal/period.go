package goal

import (
	"fmt"
	"strconv"
	"time"
)

// =============================================================================
// PERIOD CALENDAR - Month and week reference encoding
// =============================================================================

// References are the keys goal rows are filed under:
//   - Month reference: yyyyMM, e.g. "202603"
//   - Week reference:  WWyyyy, e.g. "052026"
//
// Weeks start on Monday. The week containing January 1 is week 1 of that
// year, so a week spanning a year boundary belongs to the new year.

const monthRefLayout = "200601"

// MonthReference returns the yyyyMM reference for the date's month.
func MonthReference(t time.Time) string {
	return t.Format(monthRefLayout)
}

// ParseMonthReference parses a yyyyMM reference into the first day of the
// month (UTC).
func ParseMonthReference(ref string) (time.Time, error) {
	if len(ref) != 6 {
		return time.Time{}, &InvalidReferenceError{Reference: ref, Kind: "month"}
	}
	t, err := time.ParseInLocation(monthRefLayout, ref, time.UTC)
	if err != nil {
		return time.Time{}, &InvalidReferenceError{Reference: ref, Kind: "month"}
	}
	return t, nil
}

// DaysInMonth returns the number of calendar days in the referenced month.
func DaysInMonth(ref string) (int, error) {
	first, err := ParseMonthReference(ref)
	if err != nil {
		return 0, err
	}
	return daysIn(first), nil
}

// MonthRange returns the first and last calendar day of the referenced
// month, both inclusive.
func MonthRange(ref string) (time.Time, time.Time, error) {
	first, err := ParseMonthReference(ref)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	last := first.AddDate(0, 1, -1)
	return first, last, nil
}

// daysIn returns the day count of the month containing t.
func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// =============================================================================
// WEEK REFERENCES
// =============================================================================

// WeekReference returns the WWyyyy reference for the week containing t.
// WeekRange is its exact inverse for any date within the week.
func WeekReference(t time.Time) string {
	monday := mondayOf(t)
	sunday := monday.AddDate(0, 0, 6)

	// If the week spans a year boundary it contains January 1 and is
	// week 1 of the year the Sunday falls in.
	year := sunday.Year()
	anchor := mondayOf(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC))
	week := int(monday.Sub(anchor).Hours()/(24*7)) + 1

	return fmt.Sprintf("%02d%04d", week, year)
}

// WeekRange returns the Monday and Sunday (inclusive) of the referenced week.
func WeekRange(ref string) (time.Time, time.Time, error) {
	if len(ref) != 6 {
		return time.Time{}, time.Time{}, &InvalidReferenceError{Reference: ref, Kind: "week"}
	}
	week, err := strconv.Atoi(ref[:2])
	if err != nil || week < 1 || week > 54 {
		return time.Time{}, time.Time{}, &InvalidReferenceError{Reference: ref, Kind: "week"}
	}
	year, err := strconv.Atoi(ref[2:])
	if err != nil || year < 1 {
		return time.Time{}, time.Time{}, &InvalidReferenceError{Reference: ref, Kind: "week"}
	}

	anchor := mondayOf(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC))
	start := anchor.AddDate(0, 0, (week-1)*7)
	return start, start.AddDate(0, 0, 6), nil
}

// mondayOf returns the Monday of the week containing t, truncated to
// midnight UTC.
func mondayOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return day.AddDate(0, 0, -offset)
}

// sameMonth reports whether t falls in the calendar month starting at first.
func sameMonth(t, first time.Time) bool {
	return t.Year() == first.Year() && t.Month() == first.Month()
}
