package goal_test

import (
	"errors"
	"testing"
	"time"

	"github.com/eleve/goal-engine/goal"
)

// =============================================================================
// MONTH REFERENCES
// =============================================================================

func TestMonthReference_Format(t *testing.T) {
	d := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	if ref := goal.MonthReference(d); ref != "202603" {
		t.Errorf("Expected 202603, got %s", ref)
	}
}

func TestParseMonthReference_RoundTrip(t *testing.T) {
	first, err := goal.ParseMonthReference("202611")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)
	if !first.Equal(want) {
		t.Errorf("Expected %v, got %v", want, first)
	}
}

func TestParseMonthReference_Malformed(t *testing.T) {
	for _, ref := range []string{"", "2026", "2026-03", "abcdef", "202613", "202600"} {
		_, err := goal.ParseMonthReference(ref)
		if !errors.Is(err, goal.ErrInvalidPeriodReference) {
			t.Errorf("Expected ErrInvalidPeriodReference for %q, got %v", ref, err)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := map[string]int{
		"202606": 30,
		"202607": 31,
		"202602": 28,
		"202402": 29, // leap year
	}
	for ref, want := range cases {
		got, err := goal.DaysInMonth(ref)
		if err != nil {
			t.Fatalf("Unexpected error for %s: %v", ref, err)
		}
		if got != want {
			t.Errorf("DaysInMonth(%s): expected %d, got %d", ref, want, got)
		}
	}
}

func TestMonthRange_Inclusive(t *testing.T) {
	from, to, err := goal.MonthRange("202602")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if from.Day() != 1 || from.Month() != time.February {
		t.Errorf("Expected Feb 1 start, got %v", from)
	}
	if to.Day() != 28 || to.Month() != time.February {
		t.Errorf("Expected Feb 28 end, got %v", to)
	}
}

// =============================================================================
// WEEK REFERENCES
// =============================================================================

func TestWeekReference_WeekOneContainsJanuaryFirst(t *testing.T) {
	// GIVEN: January 1, 2026 (a Thursday)
	// WHEN: Computing the week reference
	// THEN: It is week 1 of 2026, Monday Dec 29 2025 through Sunday Jan 4 2026

	jan1 := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	ref := goal.WeekReference(jan1)
	if ref != "012026" {
		t.Fatalf("Expected 012026, got %s", ref)
	}

	start, end, err := goal.WeekRange(ref)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	wantStart := time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, time.January, 4, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("Expected start %v, got %v", wantStart, start)
	}
	if !end.Equal(wantEnd) {
		t.Errorf("Expected end %v, got %v", wantEnd, end)
	}
}

func TestWeekReference_YearBoundaryBelongsToNewYear(t *testing.T) {
	// December 31, 2025 falls in the same Monday-Sunday span as January 1,
	// 2026, so it belongs to week 1 of 2026.
	dec31 := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	if ref := goal.WeekReference(dec31); ref != "012026" {
		t.Errorf("Expected 012026, got %s", ref)
	}
}

func TestWeekReference_MondayStart(t *testing.T) {
	// Monday and the following Sunday share a reference; the next Monday
	// starts a new week.
	monday := time.Date(2026, time.June, 8, 0, 0, 0, 0, time.UTC)
	sunday := monday.AddDate(0, 0, 6)
	nextMonday := monday.AddDate(0, 0, 7)

	if goal.WeekReference(monday) != goal.WeekReference(sunday) {
		t.Errorf("Monday and Sunday of the same week must share a reference")
	}
	if goal.WeekReference(monday) == goal.WeekReference(nextMonday) {
		t.Errorf("Consecutive weeks must not share a reference")
	}
}

func TestWeekRange_InverseOfWeekReference(t *testing.T) {
	// GIVEN: Every day across several years, including leap years and
	//        year boundaries
	// WHEN: Encoding the day's week reference and decoding it back
	// THEN: The decoded Monday-Sunday range contains the day

	day := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2027, time.December, 31, 0, 0, 0, 0, time.UTC)
	for ; !day.After(end); day = day.AddDate(0, 0, 1) {
		ref := goal.WeekReference(day)
		start, to, err := goal.WeekRange(ref)
		if err != nil {
			t.Fatalf("WeekRange(%s) failed for %v: %v", ref, day, err)
		}
		if day.Before(start) || day.After(to) {
			t.Fatalf("Day %v outside decoded range %v..%v (ref %s)", day, start, to, ref)
		}
		if start.Weekday() != time.Monday || to.Weekday() != time.Sunday {
			t.Fatalf("Range %v..%v is not Monday-Sunday (ref %s)", start, to, ref)
		}
		if to.Sub(start) != 6*24*time.Hour {
			t.Fatalf("Range %v..%v is not seven days (ref %s)", start, to, ref)
		}
	}
}

func TestWeekRange_Malformed(t *testing.T) {
	for _, ref := range []string{"", "12", "002026", "992026", "ab2026", "12abcd"} {
		_, _, err := goal.WeekRange(ref)
		if !errors.Is(err, goal.ErrInvalidPeriodReference) {
			t.Errorf("Expected ErrInvalidPeriodReference for %q, got %v", ref, err)
		}
	}
}
