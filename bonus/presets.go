/*
presets.go - Pre-built bonus configurations

PURPOSE:
  Ready-to-use bonus definitions for the common retail patterns. These are
  starting points; real stores tune payouts and add prerequisites through
  the admin surface.

EXAMPLE:
  b := bonus.MonthlyStoreBonus("store-monthly", 500)
  verdict, err := aggregator.Eligible(ctx, b, ec)

SEE ALSO:
  - types.go: Bonus definition
  - goal/rule.go: The lexicon the prerequisite phrases come from
*/
package bonus

import "github.com/shopspring/decimal"

// MonthlyStoreBonus pays out when the store reaches its monthly target.
func MonthlyStoreBonus(id string, payout float64) Bonus {
	return Bonus{
		ID:     id,
		Name:   "Monthly Store Bonus",
		Tier:   TierStandard,
		Payout: decimal.NewFromFloat(payout),
		Prerequisites: []string{
			"Store must reach the monthly target",
		},
		Active: true,
	}
}

// MonthlyStoreStretchBonus pays out when the store reaches its monthly
// stretch target on top of the minimum target.
func MonthlyStoreStretchBonus(id string, payout float64) Bonus {
	return Bonus{
		ID:     id,
		Name:   "Monthly Store Stretch Bonus",
		Tier:   TierPremium,
		Payout: decimal.NewFromFloat(payout),
		Prerequisites: []string{
			"Store must reach the monthly target",
			"Store must reach the monthly stretch target",
		},
		Active: true,
	}
}

// WeeklyIndividualBonus pays out when a salesperson reaches their weekly
// target share.
func WeeklyIndividualBonus(id string, payout float64) Bonus {
	return Bonus{
		ID:     id,
		Name:   "Weekly Salesperson Bonus",
		Tier:   TierStandard,
		Payout: decimal.NewFromFloat(payout),
		Prerequisites: []string{
			"Salesperson must reach the weekly target",
		},
		Active: true,
	}
}

// WeeklyIndividualStretchBonus pays out when a salesperson reaches their
// weekly stretch share.
func WeeklyIndividualStretchBonus(id string, payout float64) Bonus {
	return Bonus{
		ID:     id,
		Name:   "Weekly Salesperson Stretch Bonus",
		Tier:   TierPremium,
		Payout: decimal.NewFromFloat(payout),
		Prerequisites: []string{
			"Salesperson must reach the weekly stretch target",
		},
		Active: true,
	}
}
