/*
allocator.go - Weighted target allocation

PURPOSE:
  Derives dynamic daily and weekly sub-targets from a monthly goal row.
  The daily target self-corrects against actual pace: being behind spreads
  the deficit over the remaining days, being ahead raises today's bar
  proportionally so cumulative pressure never relaxes.

WEIGHTS:
  A goal may carry a per-day weight map (percent of the monthly target per
  calendar day), letting weekends and holidays carry a different nominal
  share. Days without a positive weight fall back to the uniform share
  targetValue / daysInMonth. Weights are taken as-is; the allocator never
  renormalizes a map whose entries don't sum to 100.

DAILY ALGORITHM:
  base     = today's weighted share
  expected = sum of shares for every day strictly before today
  variance = salesToDate - expected

  ahead  (variance >= 0): target = base * (1 + variance/expected)
  behind (variance < 0):  target = base + |variance| / daysRemaining

  The result is capped at half the monthly target (one day is never asked
  to carry more than half the month) and floored at base (the dynamic
  adjustment never reduces a day below its nominal share).

WEEKLY:
  The weekly target is a pure sum of the weighted shares for the week's
  Monday-Sunday days that fall inside the goal's month. No pace correction:
  schedule adherence is a daily-only concept. A week straddling two months
  needs two goal rows; each row contributes only its own month's days.

SEE ALSO:
  - period.go: Week reference encoding
  - evaluator.go: Uses WeeklyTargetFor for weekly metrics
*/
package goal

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	oneHundred = decimal.NewFromInt(100)
	oneHalf    = decimal.NewFromFloat(0.5)
)

// =============================================================================
// DAILY TARGET
// =============================================================================

// DailyTarget computes today's dynamic target for a monthly goal given the
// sales accumulated on the days before today in the same month.
func DailyTarget(g Goal, today time.Time, salesToDate decimal.Decimal) decimal.Decimal {
	if g.TargetValue.Sign() <= 0 {
		return decimal.Zero
	}

	days := daysIn(today)
	base := dailyShare(g, g.TargetValue, today, days)

	// Cumulative share for every day strictly before today: the pace the
	// month "should" be at by yesterday.
	expected := decimal.Zero
	for d := 1; d < today.Day(); d++ {
		day := time.Date(today.Year(), today.Month(), d, 0, 0, 0, 0, time.UTC)
		expected = expected.Add(dailyShare(g, g.TargetValue, day, days))
	}

	variance := salesToDate.Sub(expected)

	var dynamic decimal.Decimal
	switch {
	case variance.Sign() >= 0 && expected.Sign() > 0:
		// Ahead of pace: raise today's bar proportionally.
		dynamic = base.Mul(decimal.NewFromInt(1).Add(variance.Div(expected)))
	case variance.Sign() >= 0:
		// Day 1 of the month: nothing expected yet.
		dynamic = base
	default:
		// Behind pace: spread the deficit over the remaining days,
		// today included.
		remaining := decimal.NewFromInt(int64(days - today.Day() + 1))
		dynamic = base.Add(variance.Neg().Div(remaining))
	}

	// A single day never carries more than half the month.
	ceiling := g.TargetValue.Mul(oneHalf)
	if dynamic.GreaterThan(ceiling) {
		dynamic = ceiling
	}
	// The adjustment never drops a day below its nominal share.
	if dynamic.LessThan(base) {
		dynamic = base
	}
	return dynamic
}

// dailyShare returns the weighted share of base for one calendar day.
func dailyShare(g Goal, base decimal.Decimal, day time.Time, daysInMonth int) decimal.Decimal {
	if w, ok := g.DailyWeights[DateKey(day)]; ok && w.Sign() > 0 {
		return base.Mul(w).Div(oneHundred)
	}
	return base.Div(decimal.NewFromInt(int64(daysInMonth)))
}

// =============================================================================
// WEEKLY TARGET
// =============================================================================

// WeeklyTarget computes the minimum-target share of the referenced week.
func WeeklyTarget(g Goal, weekRef string) (decimal.Decimal, error) {
	return WeeklyTargetFor(g, weekRef, MetricTarget)
}

// WeeklyTargetFor computes the referenced week's share of the goal's month
// using the chosen metric (target or stretch target) as the base. Only the
// week's days inside the goal's own month contribute.
func WeeklyTargetFor(g Goal, weekRef string, metric Metric) (decimal.Decimal, error) {
	base := g.MetricValue(metric)
	if base.Sign() <= 0 {
		return decimal.Zero, nil
	}

	first, err := ParseMonthReference(g.MonthReference)
	if err != nil {
		return decimal.Zero, err
	}
	start, end, err := WeekRange(weekRef)
	if err != nil {
		return decimal.Zero, err
	}

	days := daysIn(first)
	total := decimal.Zero
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if !sameMonth(day, first) {
			continue
		}
		total = total.Add(dailyShare(g, base, day, days))
	}
	return total, nil
}
